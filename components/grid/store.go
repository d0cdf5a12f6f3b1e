package grid

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDashboardNotFound is returned by stores for unknown dashboard ids.
var ErrDashboardNotFound = errors.New("grid: dashboard not found")

// InMemoryDashboardStore is a concurrency-safe DashboardStore for tests and
// single-process deployments.
type InMemoryDashboardStore struct {
	mu   sync.RWMutex
	data map[string]Dashboard
}

// NewInMemoryDashboardStore creates an empty store.
func NewInMemoryDashboardStore() *InMemoryDashboardStore {
	return &InMemoryDashboardStore{data: make(map[string]Dashboard)}
}

// Get returns a copy of the stored dashboard.
func (s *InMemoryDashboardStore) Get(_ context.Context, id string) (Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[id]
	if !ok {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrDashboardNotFound, id)
	}
	return cloneDashboard(d), nil
}

// Save upserts dashboard.
func (s *InMemoryDashboardStore) Save(_ context.Context, dashboard Dashboard) error {
	if dashboard.ID == "" {
		return errMissingDashboardID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[dashboard.ID] = cloneDashboard(dashboard)
	return nil
}

// List returns every dashboard ordered by id.
func (s *InMemoryDashboardStore) List(_ context.Context) ([]Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Dashboard, 0, len(s.data))
	for _, d := range s.data {
		out = append(out, cloneDashboard(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
