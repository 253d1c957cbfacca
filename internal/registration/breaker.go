package registration

import (
	"context"

	"rng/pkg/circuitbreaker"
	pkgerrors "rng/pkg/errors"
)

// BreakerStore guards a Store with a circuit breaker. Missing statuses are
// not failures.
type BreakerStore struct {
	store   Store
	breaker *circuitbreaker.Wrapper
}

func NewBreakerStore(store Store, cfg circuitbreaker.Config) *BreakerStore {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || pkgerrors.IsNotFound(err)
	}
	return &BreakerStore{store: store, breaker: circuitbreaker.NewWrapper(cfg)}
}

func (s *BreakerStore) Get(ctx context.Context, eventType, eventID string) (*EventStatus, error) {
	status, err := circuitbreaker.Do(ctx, s.breaker, func() (*EventStatus, error) {
		return s.store.Get(ctx, eventType, eventID)
	})
	return status, s.classify(err)
}

func (s *BreakerStore) Put(ctx context.Context, status *EventStatus) error {
	_, err := s.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, s.store.Put(ctx, status)
	})
	return s.classify(err)
}

func (s *BreakerStore) Delete(ctx context.Context, eventType, eventID string) error {
	_, err := s.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, s.store.Delete(ctx, eventType, eventID)
	})
	return s.classify(err)
}

func (s *BreakerStore) Breaker() *circuitbreaker.Wrapper {
	return s.breaker
}

func (s *BreakerStore) classify(err error) error {
	if circuitbreaker.IsUnavailable(err) {
		return pkgerrors.ErrServiceUnavailable.WithCause(err).WithDetail("circuit_breaker", s.breaker.Name())
	}
	return err
}
