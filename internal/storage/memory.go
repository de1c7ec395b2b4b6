package storage

import (
	"context"
	"sync"

	"curvemm/internal/model"
)

// MemorySink collects events in memory, for tests and dry runs.
type MemorySink struct {
	mu     sync.Mutex
	events []model.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) PutEventBatch(_ context.Context, events []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// Events returns a copy of everything collected so far.
func (s *MemorySink) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}
