package eventtype

import (
	"context"

	"rng/internal/management"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/models"
)

// EntityTypeChecker reports whether an entity type is known.
type EntityTypeChecker interface {
	Exists(ctx context.Context, entityType string) (bool, error)
}

type Service struct {
	repo                Repository
	configEventProducer *management.ConfigEventProducer
	auditor             management.Auditor
	entityTypes         EntityTypeChecker
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

// WithEntityTypes rejects configs whose entity type is unknown to checker.
func WithEntityTypes(checker EntityTypeChecker) ServiceOption {
	return func(s *Service) {
		s.entityTypes = checker
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Config, error) {
	if err := ValidateCreate(req); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithMessage(err.Error())
	}
	if err := s.checkEntityType(ctx, req.EntityType); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	cfg := &Config{
		EntityType:        req.EntityType,
		Label:             req.Label,
		Enabled:           enabled,
		RegistrationTypes: req.RegistrationTypes,
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, cfg.EntityType, models.ActionCreate, nil, cfg)
	s.publish(ctx, models.ActionCreate, cfg.EntityType)
	return copyConfig(cfg), nil
}

func (s *Service) List(ctx context.Context) ([]Config, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return configs, nil
}

func (s *Service) Get(ctx context.Context, entityType string) (*Config, error) {
	cfg, err := s.repo.Get(ctx, entityType)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return cfg, nil
}

func (s *Service) Update(ctx context.Context, entityType string, req UpdateRequest) (*Config, error) {
	if err := ValidateUpdate(req); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithMessage(err.Error())
	}

	cfg, err := s.repo.Get(ctx, entityType)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	old := copyConfig(cfg)

	if req.Label != nil {
		cfg.Label = *req.Label
	}
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.RegistrationTypes != nil {
		cfg.RegistrationTypes = req.RegistrationTypes
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, entityType, models.ActionUpdate, old, cfg)
	s.publish(ctx, models.ActionUpdate, entityType)
	return copyConfig(cfg), nil
}

// Toggle flips the enabled flag, adding or removing the routes of entityType.
func (s *Service) Toggle(ctx context.Context, entityType string) (*Config, error) {
	cfg, err := s.repo.Get(ctx, entityType)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	old := copyConfig(cfg)

	cfg.Enabled = !cfg.Enabled
	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, entityType, models.ActionToggle, old, cfg)
	s.publish(ctx, models.ActionToggle, entityType)
	return copyConfig(cfg), nil
}

func (s *Service) Delete(ctx context.Context, entityType string) error {
	cfg, err := s.repo.Get(ctx, entityType)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if err := s.repo.Delete(ctx, entityType); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.audit(ctx, entityType, models.ActionDelete, cfg, nil)
	s.publish(ctx, models.ActionDelete, entityType)
	return nil
}

func (s *Service) checkEntityType(ctx context.Context, entityType string) error {
	if s.entityTypes == nil {
		return nil
	}
	ok, err := s.entityTypes.Exists(ctx, entityType)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
	}
	if !ok {
		return pkgerrors.ErrValidation.
			WithMessage("unknown entity type").
			WithDetail("entity_type", entityType)
	}
	return nil
}

func (s *Service) audit(ctx context.Context, entityType, action string, oldValue, newValue *Config) {
	if s.auditor == nil {
		return
	}
	entry := management.AuditLogEntry{
		SubjectType: management.SubjectEventType,
		Subject:     entityType,
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

func (s *Service) publish(ctx context.Context, action, entityType string) {
	_ = s.configEventProducer.PublishEventTypeEvent(ctx, action, entityType)
}
