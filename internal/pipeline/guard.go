package pipeline

import (
	"context"
	"time"

	"github.com/legalvoice/api/internal/model"
)

// claim marks stage as running for the case. It is the check-and-set that keeps
// every stage's side effects to a single runner.
func (p *Pipeline) claim(ctx context.Context, id string, stage model.Stage) (*model.Case, error) {
	var snapshot *model.Case
	c, err := p.store.Update(ctx, id, func(c *model.Case) error {
		snapshot = c.Clone()
		if err := checkRunnable(c, stage); err != nil {
			return err
		}
		// stores keep microseconds; the claim time is compared on completion
		now := p.now().Truncate(time.Microsecond)
		if c.ActiveStage == stage && c.ClaimedAt != nil && now.Sub(*c.ClaimedAt) < p.lease(stage) {
			return ErrStageInFlight
		}
		c.ActiveStage = stage
		c.ClaimedAt = &now
		if c.Status.Rank() < stage.ActiveStatus().Rank() {
			c.Status = stage.ActiveStatus()
		}
		return nil
	})
	if err != nil {
		if snapshot != nil {
			return snapshot, err
		}
		return nil, err
	}
	return c, nil
}

// checkRunnable rejects stages that are done, premature, or on a failed case.
func checkRunnable(c *model.Case, stage model.Stage) error {
	if c.Status == model.CaseStatusFailed {
		return ErrCaseFailed
	}
	if c.Stage >= stage {
		return ErrStageApplied
	}
	if c.Stage < stage-1 {
		return ErrStageOutOfOrder
	}
	return nil
}

// complete records the stage as done: one step entry, the done status and
// any stage output written by apply.
func (p *Pipeline) complete(ctx context.Context, id string, stage model.Stage, message string, apply func(c *model.Case)) (*model.Case, error) {
	return p.store.Update(ctx, id, func(c *model.Case) error {
		if err := checkRunnable(c, stage); err != nil {
			return err
		}
		if apply != nil {
			apply(c)
		}
		c.AppendStep(stage, model.StepStatusCompleted, message, p.now())
		c.Stage = stage
		if c.Status.Rank() < stage.DoneStatus().Rank() {
			c.Status = stage.DoneStatus()
		}
		release(c, stage)
		return nil
	})
}

// fail records an unrecoverable stage error. Delivery failures leave the case
// completed; every other stage moves it to failed.
func (p *Pipeline) fail(ctx context.Context, id string, stage model.Stage, cause error) (*model.Case, error) {
	reason := cause.Error()
	return p.store.Update(ctx, id, func(c *model.Case) error {
		if err := checkRunnable(c, stage); err != nil {
			return err
		}
		c.AppendStep(stage, model.StepStatusFailed, failureMessage(stage, reason), p.now())
		if stage == model.StageDelivery {
			c.Stage = stage
		} else {
			c.Status = model.CaseStatusFailed
			c.FailureReason = reason
		}
		release(c, stage)
		return nil
	})
}

// unclaim drops a claim without recording anything, so the stage can be retried.
func (p *Pipeline) unclaim(ctx context.Context, id string, stage model.Stage) {
	_, err := p.store.Update(ctx, id, func(c *model.Case) error {
		release(c, stage)
		return nil
	})
	if err != nil {
		p.log.Sugar().Warnw("failed to release stage claim", "case_id", id, "stage", stage.Step(), "error", err)
	}
}

// verifyClaim fails when another runner took the stage over after our lease expired.
func (p *Pipeline) verifyClaim(ctx context.Context, id string, stage model.Stage, claimedAt time.Time, apply func(c *model.Case)) (*model.Case, error) {
	return p.store.Update(ctx, id, func(c *model.Case) error {
		if err := checkRunnable(c, stage); err != nil {
			return err
		}
		if c.ActiveStage != stage || c.ClaimedAt == nil || !c.ClaimedAt.Equal(claimedAt) {
			return ErrClaimLost
		}
		if apply != nil {
			apply(c)
		}
		return nil
	})
}

func release(c *model.Case, stage model.Stage) {
	if c.ActiveStage == stage {
		c.ActiveStage = model.StageNone
		c.ClaimedAt = nil
	}
}

// lease is how long a claim stays valid: every collaborator call of the stage
// with all retries, plus slack.
func (p *Pipeline) lease(stage model.Stage) time.Duration {
	calls := 1
	if stage == model.StageDelivery {
		calls = 4
	}
	perCall := p.cfg.StageTimeout*time.Duration(p.cfg.MaxRetries+1) + p.cfg.RetryMaxInterval*time.Duration(p.cfg.MaxRetries)
	return time.Duration(calls)*perCall + 30*time.Second
}
