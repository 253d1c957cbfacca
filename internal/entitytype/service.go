package entitytype

import (
	"context"

	"rng/internal/management"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/models"
)

type Service struct {
	registry            *Registry
	repo                Repository
	configEventProducer *management.ConfigEventProducer
	auditor             management.Auditor
	references          EventTypeReferences
}

// EventTypeReferences reports whether an event type config designates the
// given entity type.
type EventTypeReferences interface {
	HasEntityType(ctx context.Context, entityType string) (bool, error)
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

func WithEventTypeReferences(references EventTypeReferences) ServiceOption {
	return func(s *Service) {
		s.references = references
	}
}

// NewService manages the stored definitions in repo. Reads go through
// registry so static definitions are listed too.
func NewService(registry *Registry, repo Repository, opts ...ServiceOption) *Service {
	s := &Service{registry: registry, repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Definition, error) {
	return s.registry.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Definition, error) {
	return s.registry.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Definition, error) {
	if err := ValidateCreate(req); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithMessage(err.Error())
	}
	if s.repo == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithMessage("entity type storage not configured")
	}

	def := &Definition{
		ID:            req.ID,
		Label:         req.Label,
		LinkTemplates: copyTemplates(req.LinkTemplates),
	}
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, def.ID, models.ActionCreate, nil, def)
	s.publish(ctx, models.ActionCreate, def.ID)
	return copyDefinition(def), nil
}

// Update changes a stored definition. LinkTemplates, when present, replaces
// the whole template map.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Definition, error) {
	if err := ValidateUpdate(req); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithMessage(err.Error())
	}
	if s.repo == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithMessage("entity type storage not configured")
	}

	def, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.staticAware(err, id)
	}
	old := copyDefinition(def)

	if req.Label != nil {
		def.Label = *req.Label
	}
	if req.LinkTemplates != nil {
		def.LinkTemplates = copyTemplates(req.LinkTemplates)
	}

	if err := s.repo.Update(ctx, def); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, id, models.ActionUpdate, old, def)
	s.publish(ctx, models.ActionUpdate, id)
	return copyDefinition(def), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.repo == nil {
		return pkgerrors.ErrServiceUnavailable.WithMessage("entity type storage not configured")
	}

	def, err := s.repo.Get(ctx, id)
	if err != nil {
		return s.staticAware(err, id)
	}
	// A stored override of a static ID falls back to the static definition.
	if s.references != nil && !s.registry.IsStatic(id) {
		referenced, err := s.references.HasEntityType(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
		}
		if referenced {
			return pkgerrors.ErrConflict.
				WithMessage("entity type is designated as an event type").
				WithDetail("id", id)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, id, models.ActionDelete, def, nil)
	s.publish(ctx, models.ActionDelete, id)
	return nil
}

// staticAware reports static-only definitions as read-only instead of missing.
func (s *Service) staticAware(err error, id string) error {
	if pkgerrors.IsNotFound(err) && s.registry.IsStatic(id) {
		return pkgerrors.ErrConflict.
			WithMessage("entity type is defined in static configuration").
			WithDetail("id", id)
	}
	return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
}

func (s *Service) audit(ctx context.Context, id, action string, oldValue, newValue *Definition) {
	if s.auditor == nil {
		return
	}
	entry := management.AuditLogEntry{
		SubjectType: management.SubjectEntityType,
		Subject:     id,
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

func (s *Service) publish(ctx context.Context, action, id string) {
	_ = s.configEventProducer.PublishEntityTypeEvent(ctx, action, id)
}
