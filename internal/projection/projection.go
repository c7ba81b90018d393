// Package projection derives the UI-facing progress view of a case and
// watches a case until it settles.
package projection

import (
	"context"
	"errors"
	"time"

	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/store"
)

// TotalSteps is the number of positions on the progress bar.
const TotalSteps = 4

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 2 * time.Second

// StepIndex maps a status to its zero-based progress position. Failed has no
// position of its own; see Project.
func StepIndex(status model.CaseStatus) int {
	switch status {
	case model.CaseStatusTranscribing:
		return 1
	case model.CaseStatusGenerating:
		return 2
	case model.CaseStatusCompleted:
		return 3
	}
	return 0
}

// IsComplete reports whether the document has been generated.
func IsComplete(status model.CaseStatus) bool {
	return status == model.CaseStatusCompleted
}

// IsTerminal reports whether the case will not change any more: failed, or
// completed with delivery recorded.
func IsTerminal(c *model.Case) bool {
	if c.Status == model.CaseStatusFailed {
		return true
	}
	return c.Status == model.CaseStatusCompleted && c.Stage >= model.StageDelivery
}

func stepIndexOf(c *model.Case) int {
	if c.Status == model.CaseStatusFailed {
		// the stage after the last completed one is the one that failed
		return min(int(c.Stage), TotalSteps-1)
	}
	return StepIndex(c.Status)
}

func currentStep(c *model.Case) string {
	switch c.Status {
	case model.CaseStatusPending:
		return "Waiting to start"
	case model.CaseStatusProcessing:
		return "Processing audio"
	case model.CaseStatusTranscribing:
		return "Transcribing audio"
	case model.CaseStatusGenerating:
		return "Generating legal document"
	case model.CaseStatusFailed:
		return "Processing failed"
	}
	if c.Stage < model.StageDelivery {
		return "Delivering document"
	}
	return "Document ready"
}

// Project builds the progress view of c.
func Project(c *model.Case) model.Progress {
	idx := stepIndexOf(c)
	steps := c.ProcessingSteps
	if steps == nil {
		steps = []model.ProcessingStep{}
	}
	return model.Progress{
		CaseID:        c.ID,
		Status:        c.Status,
		StepIndex:     idx,
		TotalSteps:    TotalSteps,
		Percent:       idx * 100 / (TotalSteps - 1),
		CurrentStep:   currentStep(c),
		IsComplete:    IsComplete(c.Status),
		IsFailed:      c.Status == model.CaseStatusFailed,
		IsTerminal:    IsTerminal(c),
		DocumentURL:   c.DocumentURL,
		FailureReason: c.FailureReason,
		Steps:         steps,
	}
}

// Getter reads a case by id.
type Getter interface {
	Get(ctx context.Context, id string) (*model.Case, error)
}

// EmitFunc receives each changed projection. Returning an error stops the watch.
type EmitFunc func(p model.Progress) error

// Watch polls the case every interval and emits the projection whenever it
// changes. It returns nil once the case is terminal, ctx.Err() when the
// observer detaches, and store.ErrNotFound for unknown ids. Other read errors
// are retried on the next tick.
func Watch(ctx context.Context, g Getter, id string, interval time.Duration, emit EmitFunc) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *model.Progress
	for {
		c, err := g.Get(ctx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return err
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		default:
			p := Project(c)
			if last == nil || changed(*last, p) {
				if err := emit(p); err != nil {
					return err
				}
				last = &p
			}
			if p.IsTerminal {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func changed(a, b model.Progress) bool {
	return a.Status != b.Status ||
		len(a.Steps) != len(b.Steps) ||
		a.DocumentURL != b.DocumentURL ||
		a.IsTerminal != b.IsTerminal
}
