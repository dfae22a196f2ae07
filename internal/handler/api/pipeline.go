package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	"github.com/neelpatelshah/swing-trader/internal/service/metrics"
	"github.com/neelpatelshah/swing-trader/internal/service/ratelimit"
	"github.com/neelpatelshah/swing-trader/internal/usecase"
	xhttp "github.com/neelpatelshah/swing-trader/pkg/http"
	xlogger "github.com/neelpatelshah/swing-trader/pkg/logger"
	"github.com/neelpatelshah/swing-trader/pkg/util"
)

const runRoute = "/api/pipeline/run"

// PipelineHandler exposes the run trigger used by the external scheduler.
type PipelineHandler struct {
	logger  *xlogger.Logger
	runner  usecase.Runner
	limiter *ratelimit.Limiter
	now     func() time.Time
}

func NewPipelineHandler(logger *xlogger.Logger, runner usecase.Runner, limiter *ratelimit.Limiter) *PipelineHandler {
	metrics.Register()
	return &PipelineHandler{logger: logger, runner: runner, limiter: limiter, now: time.Now}
}

func (h *PipelineHandler) RegisterRoutes(e *echo.Echo) {
	e.POST(runRoute, h.Run)
}

// Run executes one pipeline run synchronously and returns its summary,
// leaderboard and holding signal.
func (h *PipelineHandler) Run(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.TriggerLatency.WithLabelValues(runRoute).Observe(time.Since(start).Seconds())
	}()

	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return h.reject(c, xhttp.TooManyRequestsError("too many run requests"))
	}

	req := &models.RunPipelineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.TriggerErrors.WithLabelValues(runRoute, strconv.Itoa(http.StatusBadRequest)).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := util.ResolveRunDate(req.Date, h.now())
	if err != nil {
		return h.reject(c, xhttp.BadRequestError(err.Error()))
	}

	res, err := h.runner.Run(c.Request().Context(), date)
	if err != nil {
		h.logger.Error("pipeline run error", xlogger.String("date", date.Format(util.DateLayout)), xlogger.Error(err))
		return h.reject(c, toAppError(err, res))
	}

	return xhttp.SuccessResponse(c, models.RunPipelineResponse{
		Summary:     res.Summary,
		Leaderboard: res.Leaderboard,
		Signal:      res.Signal,
	})
}

func (h *PipelineHandler) reject(c echo.Context, appErr *xhttp.AppError) error {
	metrics.TriggerErrors.WithLabelValues(runRoute, strconv.Itoa(appErr.Status)).Inc()
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error, res *models.RunResult) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrRunInProgress):
		appErr := xhttp.ConflictError("a run for this date is already in progress").WithError(err)
		if res != nil {
			appErr.WithParam("runId", res.Summary.RunID)
		}
		return appErr
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return xhttp.ServiceUnavailableError("market data unavailable").WithError(err)
	case errors.Is(err, models.ErrConfiguration):
		return xhttp.InternalError("pipeline misconfigured").WithError(err)
	default:
		return xhttp.InternalErrorf("pipeline run failed: %v", err).WithError(err)
	}
}
