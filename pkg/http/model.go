package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int    `json:"status" example:"200"`
	Message string `json:"message" example:"OK"`
	Data    any    `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string         `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string         `json:"field,omitempty" example:"date"`
	Message string         `json:"message,omitempty" example:"date is required"`
	Params  map[string]any `json:"params,omitempty"`
}
