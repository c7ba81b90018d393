package pipeline

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/model"
	"go.uber.org/zap"
)

// call runs op with a per-attempt timeout and retries transient errors with
// exponential backoff. Permanent errors and cancellation stop immediately.
func (p *Pipeline) call(ctx context.Context, stage model.Stage, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.RetryInitial
	b.MaxInterval = p.cfg.RetryMaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.cfg.MaxRetries)), ctx)

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
		defer cancel()

		err := op(attemptCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !client.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		p.metrics.IncRetry(stage.Step())
		p.log.Warn("retrying collaborator call",
			zap.String("stage", stage.Step()),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	return backoff.RetryNotify(attempt, policy, notify)
}
