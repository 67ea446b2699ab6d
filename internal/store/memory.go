package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemorySummaryStore implements SummaryStore for testing and development.
type MemorySummaryStore struct {
	mu        sync.RWMutex
	summaries map[string]Summary
}

// NewMemorySummaryStore creates a new in-memory store.
func NewMemorySummaryStore() *MemorySummaryStore {
	return &MemorySummaryStore{summaries: make(map[string]Summary)}
}

// Save inserts or replaces a summary.
func (s *MemorySummaryStore) Save(ctx context.Context, sum Summary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sum.ID == "" {
		return "", fmt.Errorf("summary ID is required")
	}
	s.summaries[sum.ID] = sum
	return sum.ID, nil
}

// Get retrieves a summary by ID.
func (s *MemorySummaryStore) Get(ctx context.Context, id string) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return &sum, nil
}

// List returns matching summaries, newest first.
func (s *MemorySummaryStore) List(ctx context.Context, filter ListFilter) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Summary
	for _, sum := range s.summaries {
		if filter.matches(sum) {
			out = append(out, sum)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Delete removes a summary.
func (s *MemorySummaryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.summaries[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(s.summaries, id)
	return nil
}

// Close is a no-op for in-memory stores.
func (s *MemorySummaryStore) Close() error {
	return nil
}
