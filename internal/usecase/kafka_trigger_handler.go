package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	drepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	pkgkafka "github.com/neelpatelshah/swing-trader/pkg/kafka"
	applogger "github.com/neelpatelshah/swing-trader/pkg/logger"
	"github.com/neelpatelshah/swing-trader/pkg/util"
)

// Runner runs the pipeline for one evaluation date.
type Runner interface {
	Run(ctx context.Context, date time.Time) (*models.RunResult, error)
}

// KafkaTriggerHandler starts a pipeline run for each message on the trigger
// topic. Payload: {"date":"YYYY-MM-DD"}; an empty date means the latest weekday.
type KafkaTriggerHandler struct {
	topic   string
	runner  Runner
	metrics drepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

func NewKafkaTriggerHandler(topic string, runner Runner, metrics drepo.Metrics, l *applogger.Logger) *KafkaTriggerHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &KafkaTriggerHandler{topic: topic, runner: runner, metrics: metrics, log: l, now: time.Now}
}

func (h *KafkaTriggerHandler) Topic() string { return h.topic }

// Handle returns an error only for failures worth retrying. Malformed payloads
// and runs already in progress are logged and dropped.
func (h *KafkaTriggerHandler) Handle(ctx context.Context, b []byte) error {
	var req models.RunPipelineRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("trigger_unmarshal")
		h.log.Warn("dropping malformed trigger", applogger.Error(err))
		return nil
	}
	date, err := util.ResolveRunDate(req.Date, h.now())
	if err != nil {
		h.metrics.RecordError("trigger_date")
		h.log.Warn("dropping trigger with bad date", applogger.String("date", req.Date), applogger.Error(err))
		return nil
	}

	res, err := h.runner.Run(ctx, date)
	switch {
	case errors.Is(err, models.ErrRunInProgress):
		h.log.Info("trigger ignored, run in progress", applogger.String("date", date.Format(util.DateLayout)))
		return nil
	case errors.Is(err, models.ErrConfiguration):
		h.metrics.RecordError("trigger_config")
		h.log.Error("trigger rejected by configuration", applogger.Error(err))
		return nil
	case err != nil:
		return fmt.Errorf("run %s: %w", date.Format(util.DateLayout), err)
	}

	h.log.Info("triggered run finished",
		applogger.String("run_id", res.Summary.RunID),
		applogger.Int("succeeded", res.Summary.Succeeded),
		applogger.Int("failed", res.Summary.Failed))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTriggerHandler)(nil)
var _ Runner = (*DailyPipeline)(nil)
