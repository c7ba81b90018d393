package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/legalvoice/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCase() *model.Case {
	return &model.Case{
		UserName: "Maria Lopez",
		Email:    "maria@example.com",
		Category: model.CategoryWageTheft,
		Language: model.LanguageEN,
		Method:   model.MethodUpload,
	}
}

func TestMemoryStoreCreateAssignsDefaults(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newCase())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusProcessing, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.NotNil(t, got.ProcessingSteps)
}

func TestMemoryStoreIDsAreUnique(t *testing.T) {
	s := NewMemoryStore()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := s.Create(context.Background(), newCase())
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(context.Background(), "missing", func(c *model.Case) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.Create(ctx, newCase())

	got, _ := s.Get(ctx, id)
	got.Status = model.CaseStatusFailed
	got.ProcessingSteps = append(got.ProcessingSteps, model.ProcessingStep{Step: "upload"})

	again, _ := s.Get(ctx, id)
	assert.Equal(t, model.CaseStatusProcessing, again.Status)
	assert.Empty(t, again.ProcessingSteps)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, _ := s.Create(context.Background(), newCase())
	second, _ := s.Create(context.Background(), newCase())

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestMemoryStoreUpdateAbortsOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.Create(ctx, newCase())

	boom := errors.New("boom")
	_, err := s.Update(ctx, id, func(c *model.Case) error {
		c.Status = model.CaseStatusFailed
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Get(ctx, id)
	assert.Equal(t, model.CaseStatusProcessing, got.Status)
}

func TestMemoryStorePatchAndStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.Create(ctx, newCase())

	text := "I was not paid for three weeks."
	_, err := Patch(ctx, s, id, model.CasePatch{Transcription: &text})
	require.NoError(t, err)
	updated, err := UpdateStatus(ctx, s, id, model.CaseStatusGenerating)
	require.NoError(t, err)

	assert.Equal(t, text, updated.Transcription)
	assert.Equal(t, model.CaseStatusGenerating, updated.Status)
	assert.Equal(t, model.CategoryWageTheft, updated.Category)
}

func TestMemoryStoreUpdateIsSerialized(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.Create(ctx, newCase())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, id, func(c *model.Case) error {
				c.AppendStep(model.StageUpload, model.StepStatusCompleted, "", time.Now())
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, id)
	assert.Len(t, got.ProcessingSteps, 50)
}
