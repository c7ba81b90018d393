package store

import (
	"context"
	"errors"
	"time"

	"github.com/legalvoice/api/internal/model"
)

// ErrNotFound is returned when no case exists for the given id.
var ErrNotFound = errors.New("case not found")

// UpdateFunc mutates a case in place. Returning an error aborts the write.
type UpdateFunc func(c *model.Case) error

// Store is the durable record of cases.
//
// Update is a serialized read-modify-write per case id: concurrent callers for
// the same id observe each other's writes, and a failing fn leaves the stored
// case untouched.
type Store interface {
	Create(ctx context.Context, c *model.Case) (string, error)
	Get(ctx context.Context, id string) (*model.Case, error)
	List(ctx context.Context) ([]*model.Case, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.Case, error)
}

// UpdateStatus sets the case status.
func UpdateStatus(ctx context.Context, s Store, id string, status model.CaseStatus) (*model.Case, error) {
	return s.Update(ctx, id, func(c *model.Case) error {
		c.Status = status
		return nil
	})
}

// Patch applies a partial update.
func Patch(ctx context.Context, s Store, id string, p model.CasePatch) (*model.Case, error) {
	return s.Update(ctx, id, func(c *model.Case) error {
		p.Apply(c)
		return nil
	})
}

// prepare fills the fields Create owns.
func prepare(c *model.Case, now time.Time) *model.Case {
	out := c.Clone()
	if out.ID == "" {
		out.ID = model.NewCaseID()
	}
	if out.Status == "" {
		out.Status = model.CaseStatusProcessing
	}
	if out.ProcessingSteps == nil {
		out.ProcessingSteps = []model.ProcessingStep{}
	}
	out.CreatedAt = now
	out.UpdatedAt = now
	return out
}
