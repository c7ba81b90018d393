package pipeline

import "errors"

var (
	// ErrStageApplied means the stage already completed for the case.
	ErrStageApplied = errors.New("stage already applied")
	// ErrStageInFlight means another runner holds a live claim on the stage.
	ErrStageInFlight = errors.New("stage already in flight")
	// ErrCaseFailed means the case reached the failed state and accepts no more work.
	ErrCaseFailed = errors.New("case has failed")
	// ErrStageOutOfOrder means the previous stage has not completed yet.
	ErrStageOutOfOrder = errors.New("previous stage not completed")
	// ErrClaimLost means the runner's claim was taken over before it could complete.
	ErrClaimLost = errors.New("stage claim lost")
	// ErrDispatch means the stage completed but the following stage could not be scheduled.
	ErrDispatch = errors.New("failed to dispatch stage")
)

// IsNoop reports whether err means the stage run was skipped rather than failed.
func IsNoop(err error) bool {
	return errors.Is(err, ErrStageApplied) ||
		errors.Is(err, ErrStageInFlight) ||
		errors.Is(err, ErrCaseFailed) ||
		errors.Is(err, ErrClaimLost)
}
