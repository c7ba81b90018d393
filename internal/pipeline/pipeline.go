// Package pipeline advances cases through upload, transcription, generation
// and delivery. Every stage is claimed through the case store before any
// collaborator is called, so duplicate triggers are no-ops.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/config"
	"github.com/legalvoice/api/internal/document"
	"github.com/legalvoice/api/internal/metrics"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/store"
	"go.uber.org/zap"
)

// Dispatcher schedules a stage run for a case.
type Dispatcher interface {
	Dispatch(ctx context.Context, caseID string, stage model.Stage) error
}

// Runner executes a single stage. Implemented by Pipeline.
type Runner interface {
	Run(ctx context.Context, caseID string, stage model.Stage) error
}

// Collaborators are the external services the stages call.
type Collaborators struct {
	Storage     client.StorageClient
	Transcriber client.Transcriber
	Generator   client.Generator
	Renderer    client.Renderer
	Notifier    client.Notifier
}

// Config bounds collaborator calls.
type Config struct {
	StageTimeout     time.Duration
	MaxRetries       int
	RetryInitial     time.Duration
	RetryMaxInterval time.Duration
}

// ConfigFrom picks the pipeline settings out of the service config.
func ConfigFrom(cfg config.PipelineConfig) Config {
	return Config{
		StageTimeout:     cfg.StageTimeout,
		MaxRetries:       cfg.MaxRetries,
		RetryInitial:     cfg.RetryInitial,
		RetryMaxInterval: cfg.RetryMaxInterval,
	}
}

type Pipeline struct {
	store      store.Store
	collab     Collaborators
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	log        *zap.Logger
	cfg        Config
	now        func() time.Time
}

func New(s store.Store, collab Collaborators, dispatcher Dispatcher, m *metrics.Metrics, log *zap.Logger, cfg Config) *Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 2 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 500 * time.Millisecond
	}
	if cfg.RetryMaxInterval < cfg.RetryInitial {
		cfg.RetryMaxInterval = cfg.RetryInitial
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		store:      s,
		collab:     collab,
		dispatcher: dispatcher,
		metrics:    m,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Start schedules the first stage after upload.
func (p *Pipeline) Start(ctx context.Context, caseID string) error {
	return p.dispatcher.Dispatch(ctx, caseID, model.StageTranscription)
}

// Run executes one stage and schedules the next one on success.
func (p *Pipeline) Run(ctx context.Context, caseID string, stage model.Stage) error {
	switch stage {
	case model.StageTranscription:
		return p.RunTranscription(ctx, caseID)
	case model.StageGeneration:
		return p.RunGeneration(ctx, caseID)
	case model.StageDelivery:
		return p.RunDelivery(ctx, caseID)
	}
	return fmt.Errorf("stage %q cannot be run by the pipeline", stage.Step())
}

// RunTranscription converts the uploaded audio into a transcript.
func (p *Pipeline) RunTranscription(ctx context.Context, caseID string) error {
	return p.runStage(ctx, caseID, model.StageTranscription, func(ctx context.Context, c *model.Case) error {
		var t *client.Transcript
		err := p.call(ctx, model.StageTranscription, func(ctx context.Context) error {
			var err error
			t, err = p.collab.Transcriber.Transcribe(ctx, c.AudioKey, string(c.Language))
			return err
		})
		if err != nil {
			return err
		}
		_, err = p.CompleteTranscription(ctx, caseID, t)
		return err
	})
}

// CompleteTranscription persists the transcript and moves the case to generating.
// A second call for the same case returns ErrStageApplied and changes nothing.
func (p *Pipeline) CompleteTranscription(ctx context.Context, caseID string, t *client.Transcript) (*model.Case, error) {
	if t == nil || t.Text == "" {
		return nil, errors.New("empty transcript")
	}
	confidence := t.Confidence
	msg := fmt.Sprintf("Transcription completed with %.1f%% confidence", confidence*100)
	return p.complete(ctx, caseID, model.StageTranscription, msg, func(c *model.Case) {
		c.Transcription = t.Text
		c.Confidence = &confidence
		c.DetectedLanguage = t.Language
	})
}

// RunGeneration drafts the legal document from the transcript.
func (p *Pipeline) RunGeneration(ctx context.Context, caseID string) error {
	return p.runStage(ctx, caseID, model.StageGeneration, func(ctx context.Context, c *model.Case) error {
		req := client.GenerateRequest{
			CaseID:       c.ID,
			Transcript:   c.Transcription,
			Category:     string(c.Category),
			UserName:     c.UserName,
			Email:        c.Email,
			Language:     string(c.Language),
			TemplateHint: document.TemplateHint(c.Category),
		}
		var doc string
		err := p.call(ctx, model.StageGeneration, func(ctx context.Context) error {
			var err error
			doc, err = p.collab.Generator.Generate(ctx, req)
			return err
		})
		if err != nil {
			return err
		}
		_, err = p.CompleteGeneration(ctx, caseID, doc)
		return err
	})
}

// CompleteGeneration persists the document and marks the case completed.
func (p *Pipeline) CompleteGeneration(ctx context.Context, caseID, doc string) (*model.Case, error) {
	if doc == "" {
		return nil, errors.New("empty document")
	}
	return p.complete(ctx, caseID, model.StageGeneration, "Legal document generated successfully", func(c *model.Case) {
		c.GeneratedDocument = doc
	})
}

// stageFunc does the collaborator work of a claimed stage and records its completion.
type stageFunc func(ctx context.Context, c *model.Case) error

// runStage claims the stage, runs fn, and records a failure or schedules the next stage.
func (p *Pipeline) runStage(ctx context.Context, caseID string, stage model.Stage, fn stageFunc) error {
	log := p.log.With(zap.String("case_id", caseID), zap.String("stage", stage.Step()))
	start := p.now()

	c, err := p.claim(ctx, caseID, stage)
	if err != nil {
		if errors.Is(err, ErrStageApplied) && c != nil {
			if derr := p.resume(ctx, c, stage); derr != nil {
				return derr
			}
		}
		if IsNoop(err) || errors.Is(err, ErrStageOutOfOrder) {
			log.Debug("stage skipped", zap.Error(err))
			p.metrics.ObserveStage(stage.Step(), metrics.OutcomeSkipped, time.Since(start))
		}
		return err
	}
	log.Info("stage started")

	err = fn(ctx, c)
	switch {
	case err == nil:
	case IsNoop(err):
		log.Info("stage result discarded", zap.Error(err))
		p.metrics.ObserveStage(stage.Step(), metrics.OutcomeSkipped, time.Since(start))
		return err
	case ctx.Err() != nil:
		// shutting down: leave the stage for the next runner
		p.unclaim(context.WithoutCancel(ctx), caseID, stage)
		return ctx.Err()
	default:
		log.Error("stage failed", zap.Error(err))
		if _, ferr := p.fail(ctx, caseID, stage, err); ferr != nil && !IsNoop(ferr) {
			log.Error("failed to record stage failure", zap.Error(ferr))
		}
		p.metrics.ObserveStage(stage.Step(), metrics.OutcomeFailed, time.Since(start))
		return err
	}

	log.Info("stage completed", zap.Duration("elapsed", time.Since(start)))
	p.metrics.ObserveStage(stage.Step(), metrics.OutcomeCompleted, time.Since(start))
	return p.next(ctx, caseID, stage)
}

// resume re-dispatches the following stage when stage is the last one recorded,
// covering a dispatch lost after completion.
func (p *Pipeline) resume(ctx context.Context, c *model.Case, stage model.Stage) error {
	if c.Stage == stage && c.ActiveStage == model.StageNone {
		return p.next(ctx, c.ID, stage)
	}
	return nil
}

// next schedules the stage after stage. A failed dispatch is returned wrapped in
// ErrDispatch so the caller retries the completed stage, which then resumes.
func (p *Pipeline) next(ctx context.Context, caseID string, stage model.Stage) error {
	if stage >= model.StageDelivery {
		return nil
	}
	if err := p.dispatcher.Dispatch(ctx, caseID, stage+1); err != nil {
		p.log.Error("failed to dispatch next stage",
			zap.String("case_id", caseID),
			zap.String("stage", (stage+1).Step()),
			zap.Error(err))
		return fmt.Errorf("%w %s: %w", ErrDispatch, (stage + 1).Step(), err)
	}
	return nil
}

func failureMessage(stage model.Stage, reason string) string {
	switch stage {
	case model.StageTranscription:
		return "Transcription failed: " + reason
	case model.StageGeneration:
		return "Document generation failed: " + reason
	case model.StageDelivery:
		return "Delivery failed: " + reason
	}
	return "Processing failed: " + reason
}
