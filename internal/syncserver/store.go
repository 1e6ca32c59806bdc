package syncserver

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/FairHead/GymFit/internal/models"
)

// ErrNotFound is returned when a user has no copy of the aggregate.
var ErrNotFound = errors.New("aggregate not found")

// Head is one entry of the change feed.
type Head struct {
	RoutineID string `json:"routineId"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Store is the server-side aggregate store, keyed by (user, routine).
// Aggregates are opaque documents to the server; last-write-wins is the
// device's job, the server just keeps the latest pushed copy per key.
type Store interface {
	Get(ctx context.Context, userID, routineID string) (*models.RoutineAggregate, error)
	Put(ctx context.Context, userID string, agg *models.RoutineAggregate) error
	Delete(ctx context.Context, userID, routineID string) error
	ChangedSince(ctx context.Context, userID string, ts int64) ([]Head, error)
}

// MemStore is an in-memory Store used in tests and for single-process
// setups without Postgres.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*models.RoutineAggregate
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]map[string]*models.RoutineAggregate)}
}

func (s *MemStore) Get(_ context.Context, userID, routineID string) (*models.RoutineAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.data[userID][routineID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *agg
	return &cp, nil
}

func (s *MemStore) Put(_ context.Context, userID string, agg *models.RoutineAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = make(map[string]*models.RoutineAggregate)
	}
	cp := *agg
	s.data[userID][agg.Routine.ID] = &cp
	return nil
}

func (s *MemStore) Delete(_ context.Context, userID, routineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[userID], routineID)
	return nil
}

func (s *MemStore) ChangedSince(_ context.Context, userID string, ts int64) ([]Head, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var heads []Head
	for id, agg := range s.data[userID] {
		if agg.Routine.UpdatedAt > ts {
			heads = append(heads, Head{RoutineID: id, UpdatedAt: agg.Routine.UpdatedAt})
		}
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i].RoutineID < heads[j].RoutineID })
	return heads, nil
}
