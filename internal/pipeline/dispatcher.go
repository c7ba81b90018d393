package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/legalvoice/api/internal/model"
	"go.uber.org/zap"
)

// Task types
const (
	TaskTypeTranscribe = "case:transcribe"
	TaskTypeGenerate   = "case:generate"
	TaskTypeDeliver    = "case:deliver"

	QueuePipeline = "pipeline"
)

// TaskType returns the queue task type for a stage.
func TaskType(stage model.Stage) (string, bool) {
	switch stage {
	case model.StageTranscription:
		return TaskTypeTranscribe, true
	case model.StageGeneration:
		return TaskTypeGenerate, true
	case model.StageDelivery:
		return TaskTypeDeliver, true
	}
	return "", false
}

// NewStageTask builds the queue task for one stage of a case.
func NewStageTask(caseID string, stage model.Stage) (*asynq.Task, error) {
	taskType, ok := TaskType(stage)
	if !ok {
		return nil, fmt.Errorf("no task for stage %q", stage.Step())
	}
	data, err := json.Marshal(model.StageTaskPayload{CaseID: caseID, Stage: stage})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// AsynqDispatcher enqueues stage tasks on Redis through asynq. The task id is
// derived from the case and stage, so a stage is queued at most once.
type AsynqDispatcher struct {
	client   *asynq.Client
	maxRetry int
}

func NewAsynqDispatcher(client *asynq.Client, maxRetry int) *AsynqDispatcher {
	return &AsynqDispatcher{client: client, maxRetry: maxRetry}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, caseID string, stage model.Stage) error {
	task, err := NewStageTask(caseID, stage)
	if err != nil {
		return err
	}

	_, err = d.client.EnqueueContext(ctx, task,
		asynq.Queue(QueuePipeline),
		asynq.TaskID(fmt.Sprintf("%s:%s", caseID, stage.Step())),
		asynq.MaxRetry(d.maxRetry),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", stage.Step(), err)
	}
	return nil
}

// InlineDispatcher runs stages in process. Async mode runs each stage on its
// own goroutine detached from the caller's context; sync mode runs it before
// Dispatch returns, which chains the whole pipeline into one call.
type InlineDispatcher struct {
	mu     sync.RWMutex
	runner Runner
	async  bool
	base   context.Context
	log    *zap.Logger
	wg     sync.WaitGroup
}

// NewInlineDispatcher creates a dispatcher. base bounds the lifetime of async runs.
func NewInlineDispatcher(base context.Context, async bool, log *zap.Logger) *InlineDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &InlineDispatcher{base: base, async: async, log: log}
}

// Bind attaches the runner. The pipeline and dispatcher reference each other,
// so the runner is set after both are built.
func (d *InlineDispatcher) Bind(r Runner) {
	d.mu.Lock()
	d.runner = r
	d.mu.Unlock()
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, caseID string, stage model.Stage) error {
	d.mu.RLock()
	runner := d.runner
	d.mu.RUnlock()
	if runner == nil {
		return errors.New("inline dispatcher has no runner bound")
	}

	if !d.async {
		d.run(ctx, runner, caseID, stage)
		return nil
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(d.base, runner, caseID, stage)
	}()
	return nil
}

// Wait blocks until every async run started so far has returned.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

func (d *InlineDispatcher) run(ctx context.Context, runner Runner, caseID string, stage model.Stage) {
	if err := runner.Run(ctx, caseID, stage); err != nil && !IsNoop(err) {
		d.log.Warn("inline stage run ended with error",
			zap.String("case_id", caseID),
			zap.String("stage", stage.Step()),
			zap.Error(err))
	}
}
