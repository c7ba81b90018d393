package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/legalvoice/api/internal/model"
)

// MemoryStore keeps cases in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[string]*model.Case
	locks map[string]*sync.Mutex
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases: make(map[string]*model.Case),
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, c *model.Case) (string, error) {
	rec := prepare(c, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[rec.ID]; exists {
		return "", fmt.Errorf("case %s already exists", rec.ID)
	}
	s.cases[rec.ID] = rec
	s.locks[rec.ID] = &sync.Mutex{}
	return rec.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*model.Case, error) {
	s.mu.RLock()
	out := make([]*model.Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, c.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Case, error) {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	working := s.cases[id].Clone()
	s.mu.RUnlock()

	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = s.now()

	s.mu.Lock()
	s.cases[id] = working
	s.mu.Unlock()
	return working.Clone(), nil
}
