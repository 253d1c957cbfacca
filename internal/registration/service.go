package registration

import (
	"context"
	"fmt"
	"time"

	"rng/internal/config"
	"rng/internal/management"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/models"
)

type Service struct {
	store               Store
	configEventProducer *management.ConfigEventProducer
	auditor             management.Auditor
	now                 func() time.Time
}

type ServiceOption func(*Service)

func WithConfigEvents(producer *management.ConfigEventProducer) ServiceOption {
	return func(s *Service) {
		s.configEventProducer = producer
	}
}

func WithAuditor(auditor management.Auditor) ServiceOption {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Get(ctx context.Context, eventType, eventID string) (*EventStatus, error) {
	status, err := s.store.Get(ctx, eventType, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return status, nil
}

func (s *Service) Put(ctx context.Context, eventType, eventID string, req PutRequest) (*EventStatus, error) {
	if err := ValidatePut(eventType, eventID, req); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithMessage(err.Error())
	}

	var old *EventStatus
	if existing, err := s.store.Get(ctx, eventType, eventID); err == nil {
		old = existing
	} else if !pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	status := &EventStatus{
		EventType:         eventType,
		EventID:           eventID,
		Status:            req.Status,
		OpensAt:           req.OpensAt,
		ClosesAt:          req.ClosesAt,
		Capacity:          req.Capacity,
		Registered:        req.Registered,
		RegistrationTypes: append([]string{}, req.RegistrationTypes...),
		UpdatedAt:         s.now().UTC(),
	}
	if err := s.store.Put(ctx, status); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	action := models.ActionUpdate
	if old == nil {
		action = models.ActionCreate
	}
	s.audit(ctx, status.EventType, action, old, status)
	_ = s.configEventProducer.PublishRegistrationStatusEvent(ctx, action, eventType, eventID)
	return status, nil
}

func (s *Service) Delete(ctx context.Context, eventType, eventID string) error {
	old, err := s.store.Get(ctx, eventType, eventID)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if err := s.store.Delete(ctx, eventType, eventID); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, eventType, models.ActionDelete, old, nil)
	_ = s.configEventProducer.PublishRegistrationStatusEvent(ctx, models.ActionDelete, eventType, eventID)
	return nil
}

func (s *Service) audit(ctx context.Context, eventType, action string, oldValue, newValue *EventStatus) {
	if s.auditor == nil {
		return
	}
	entry := management.AuditLogEntry{
		SubjectType: management.SubjectRegistrationStatus,
		Subject:     eventType,
		Action:      action,
		ChangedBy:   management.ChangedBy(ctx),
	}
	if oldValue != nil {
		entry.OldValue = oldValue
	}
	if newValue != nil {
		entry.NewValue = newValue
	}
	_ = s.auditor.LogChange(ctx, entry)
}

func ValidatePut(eventType, eventID string, req PutRequest) error {
	if !config.IsValidEntityType(eventType) {
		return fmt.Errorf("invalid event type %q", eventType)
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if req.Status != StatusOpen && req.Status != StatusClosed {
		return fmt.Errorf("status must be %q or %q", StatusOpen, StatusClosed)
	}
	if req.OpensAt < 0 || req.ClosesAt < 0 {
		return fmt.Errorf("opens_at and closes_at must be non-negative")
	}
	if req.OpensAt > 0 && req.ClosesAt > 0 && req.ClosesAt <= req.OpensAt {
		return fmt.Errorf("closes_at must be after opens_at")
	}
	if req.Capacity < 0 || req.Registered < 0 {
		return fmt.Errorf("capacity and registered must be non-negative")
	}
	for _, t := range req.RegistrationTypes {
		if !config.IsValidEntityType(t) {
			return fmt.Errorf("invalid registration type %q", t)
		}
	}
	return nil
}
