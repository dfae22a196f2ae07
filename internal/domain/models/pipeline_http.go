package models

// RunPipelineRequest triggers a pipeline run over HTTP or the trigger topic.
// An empty date means the latest weekday.
type RunPipelineRequest struct {
	Date string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// RunPipelineResponse is returned once a triggered run finishes.
type RunPipelineResponse struct {
	Summary     RunSummary    `json:"summary"`
	Leaderboard []ScoreResult `json:"leaderboard"`
	Signal      *SignalResult `json:"signal,omitempty"`
}
