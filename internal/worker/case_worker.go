package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/pipeline"
	"go.uber.org/zap"
)

// CaseWorker runs queued pipeline stages
type CaseWorker struct {
	runner pipeline.Runner
	log    *zap.Logger
}

// NewCaseWorker creates a new case worker
func NewCaseWorker(runner pipeline.Runner, log *zap.Logger) *CaseWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &CaseWorker{runner: runner, log: log}
}

// Register mounts the worker on every stage task type.
func (w *CaseWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(pipeline.TaskTypeTranscribe, w.ProcessTask)
	mux.HandleFunc(pipeline.TaskTypeGenerate, w.ProcessTask)
	mux.HandleFunc(pipeline.TaskTypeDeliver, w.ProcessTask)
}

// ProcessTask runs one stage. Stage failures are already recorded on the case,
// so only claim contention, ordering, lost dispatches, deadlines and shutdown
// are handed back to the queue for retry.
func (w *CaseWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.StageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal stage payload: %v: %w", err, asynq.SkipRetry)
	}
	if taskType, ok := pipeline.TaskType(payload.Stage); !ok || taskType != t.Type() || payload.CaseID == "" {
		return fmt.Errorf("task %s does not match payload stage %q: %w", t.Type(), payload.Stage.Step(), asynq.SkipRetry)
	}

	log := w.log.With(zap.String("case_id", payload.CaseID), zap.String("stage", payload.Stage.Step()))
	log.Debug("stage task received")

	err := w.runner.Run(ctx, payload.CaseID, payload.Stage)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrStageInFlight),
		errors.Is(err, pipeline.ErrStageOutOfOrder),
		errors.Is(err, pipeline.ErrDispatch),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		log.Info("stage deferred", zap.Error(err))
		return err
	case pipeline.IsNoop(err):
		log.Debug("stage task skipped", zap.Error(err))
		return nil
	default:
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
}
