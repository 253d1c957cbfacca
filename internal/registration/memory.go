package registration

import (
	"context"
	"sync"

	pkgerrors "rng/pkg/errors"
)

// MemoryStore keeps statuses in process. The event router falls back to it
// when Redis is not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]EventStatus
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{statuses: make(map[string]EventStatus)}
}

func memoryKey(eventType, eventID string) string {
	return eventType + ":" + eventID
}

func (s *MemoryStore) Get(ctx context.Context, eventType, eventID string) (*EventStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[memoryKey(eventType, eventID)]
	if !ok {
		return nil, pkgerrors.ErrNotFound.
			WithDetail("event_type", eventType).
			WithDetail("event_id", eventID)
	}
	status.RegistrationTypes = append([]string{}, status.RegistrationTypes...)
	return &status, nil
}

func (s *MemoryStore) Put(ctx context.Context, status *EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *status
	stored.RegistrationTypes = append([]string{}, status.RegistrationTypes...)
	s.statuses[memoryKey(status.EventType, status.EventID)] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, eventType, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey(eventType, eventID)
	if _, ok := s.statuses[key]; !ok {
		return pkgerrors.ErrNotFound.
			WithDetail("event_type", eventType).
			WithDetail("event_id", eventID)
	}
	delete(s.statuses, key)
	return nil
}
