package registration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rng/internal/constants"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/metrics"
)

// Store persists event registration statuses. Get returns ErrNotFound for
// events without a status.
type Store interface {
	Get(ctx context.Context, eventType, eventID string) (*EventStatus, error)
	Put(ctx context.Context, status *EventStatus) error
	Delete(ctx context.Context, eventType, eventID string) error
}

const (
	fieldStatus            = "status"
	fieldOpensAt           = "opens_at"
	fieldClosesAt          = "closes_at"
	fieldCapacity          = "capacity"
	fieldRegistered        = "registered"
	fieldRegistrationTypes = "registration_types"
	fieldUpdatedAt         = "updated_at"
)

type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	service   string
}

func NewRedisStore(client redis.UniversalClient, keyPrefix, service string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = constants.DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, service: service}
}

// Key returns the hash key of an event: <prefix>:event:<type>:<id>.
func (s *RedisStore) Key(eventType, eventID string) string {
	return fmt.Sprintf("%s:event:%s:%s", s.keyPrefix, eventType, eventID)
}

func (s *RedisStore) Get(ctx context.Context, eventType, eventID string) (status *EventStatus, err error) {
	defer s.observe("get", time.Now(), &err)

	values, err := s.client.HGetAll(ctx, s.Key(eventType, eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read registration status: %w", err)
	}
	if len(values) == 0 {
		return nil, pkgerrors.ErrNotFound.
			WithDetail("event_type", eventType).
			WithDetail("event_id", eventID)
	}

	status, err = decodeStatus(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode registration status %s: %w", s.Key(eventType, eventID), err)
	}
	status.EventType = eventType
	status.EventID = eventID
	return status, nil
}

func (s *RedisStore) Put(ctx context.Context, status *EventStatus) (err error) {
	defer s.observe("put", time.Now(), &err)

	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}

	key := s.Key(status.EventType, status.EventID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, encodeStatus(status))
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write registration status: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, eventType, eventID string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	deleted, err := s.client.Del(ctx, s.Key(eventType, eventID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete registration status: %w", err)
	}
	if deleted == 0 {
		return pkgerrors.ErrNotFound.
			WithDetail("event_type", eventType).
			WithDetail("event_id", eventID)
	}
	return nil
}

func (s *RedisStore) observe(operation string, start time.Time, err *error) {
	if pkgerrors.IsNotFound(*err) {
		metrics.ObserveQuery(s.service, "redis", operation, start, nil)
		return
	}
	metrics.ObserveQuery(s.service, "redis", operation, start, *err)
}

func encodeStatus(status *EventStatus) map[string]interface{} {
	return map[string]interface{}{
		fieldStatus:            status.Status,
		fieldOpensAt:           status.OpensAt,
		fieldClosesAt:          status.ClosesAt,
		fieldCapacity:          status.Capacity,
		fieldRegistered:        status.Registered,
		fieldRegistrationTypes: strings.Join(status.RegistrationTypes, ","),
		fieldUpdatedAt:         status.UpdatedAt.Unix(),
	}
}

func decodeStatus(values map[string]string) (*EventStatus, error) {
	status := &EventStatus{Status: values[fieldStatus]}

	ints := []struct {
		field string
		dst   *int64
	}{
		{fieldOpensAt, &status.OpensAt},
		{fieldClosesAt, &status.ClosesAt},
		{fieldCapacity, &status.Capacity},
		{fieldRegistered, &status.Registered},
	}
	for _, f := range ints {
		raw := values[f.field]
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.field, err)
		}
		*f.dst = v
	}

	status.RegistrationTypes = splitTypes(values[fieldRegistrationTypes])

	if raw := values[fieldUpdatedAt]; raw != "" {
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
			status.UpdatedAt = time.Unix(sec, 0).UTC()
		}
	}
	return status, nil
}

func splitTypes(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
