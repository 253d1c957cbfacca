package eventtype

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/broker"
	"rng/internal/config"
	"rng/internal/management"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/models"
)

type fakeRepository struct {
	mu      sync.Mutex
	configs map[string]Config
	err     error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{configs: make(map[string]Config)}
}

func (r *fakeRepository) Create(ctx context.Context, cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.configs[cfg.EntityType]; ok {
		return pkgerrors.ErrConflict.WithDetail("entity_type", cfg.EntityType)
	}
	cfg.ID = "id-" + cfg.EntityType
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt
	r.configs[cfg.EntityType] = *copyConfig(cfg)
	return nil
}

func (r *fakeRepository) List(ctx context.Context) ([]Config, error) {
	return r.list(false)
}

func (r *fakeRepository) ListEnabled(ctx context.Context) ([]Config, error) {
	return r.list(true)
}

func (r *fakeRepository) list(enabledOnly bool) ([]Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Config, 0, len(r.configs))
	for _, cfg := range r.configs {
		if enabledOnly && !cfg.Enabled {
			continue
		}
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityType < out[j].EntityType })
	return out, nil
}

func (r *fakeRepository) Get(ctx context.Context, entityType string) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[entityType]
	if !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("entity_type", entityType)
	}
	return copyConfig(&cfg), nil
}

func (r *fakeRepository) Update(ctx context.Context, cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.EntityType]; !ok {
		return pkgerrors.ErrNotFound.WithDetail("entity_type", cfg.EntityType)
	}
	r.configs[cfg.EntityType] = *copyConfig(cfg)
	return nil
}

func (r *fakeRepository) Delete(ctx context.Context, entityType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[entityType]; !ok {
		return pkgerrors.ErrNotFound.WithDetail("entity_type", entityType)
	}
	delete(r.configs, entityType)
	return nil
}

type fakeAuditor struct {
	entries []management.AuditLogEntry
}

func (a *fakeAuditor) LogChange(ctx context.Context, entry management.AuditLogEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func (a *fakeAuditor) ListChanges(ctx context.Context, subjectType, subject string, limit int) ([]management.AuditLogEntry, error) {
	return a.entries, nil
}

type knownEntityTypes map[string]bool

func (k knownEntityTypes) Exists(ctx context.Context, entityType string) (bool, error) {
	return k[entityType], nil
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *broker.MemoryBroker, *fakeAuditor) {
	t.Helper()
	repo := newFakeRepository()
	mem := broker.NewMemoryBroker()
	auditor := &fakeAuditor{}
	svc := NewService(repo,
		WithConfigEvents(management.NewConfigEventProducer(mem, "config-updates")),
		WithAuditor(auditor),
		WithEntityTypes(knownEntityTypes{"conference": true, "class": true}),
	)
	return svc, repo, mem, auditor
}

func lastEvent(t *testing.T, mem *broker.MemoryBroker) models.ConfigUpdateEvent {
	t.Helper()
	published := mem.Published()
	require.NotEmpty(t, published)
	event, err := models.DecodeConfigEvent(published[len(published)-1].Message)
	require.NoError(t, err)
	return event
}

func TestServiceCreate(t *testing.T) {
	svc, _, mem, auditor := newTestService(t)
	ctx := management.WithChangedBy(context.Background(), "alice")

	cfg, err := svc.Create(ctx, CreateRequest{EntityType: "conference", Label: "Conference", RegistrationTypes: []string{"attendee"}})
	require.NoError(t, err)
	assert.Equal(t, "conference", cfg.EntityType)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"attendee"}, cfg.RegistrationTypes)

	event := lastEvent(t, mem)
	assert.Equal(t, models.EventTypeEventTypeConfigUpdated, event.EventType)
	assert.Equal(t, models.ActionCreate, event.Action)
	assert.Equal(t, "conference", event.Subject)

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, management.SubjectEventType, auditor.entries[0].SubjectType)
	assert.Equal(t, "alice", auditor.entries[0].ChangedBy)
	assert.Nil(t, auditor.entries[0].OldValue)
}

func TestServiceCreateRejects(t *testing.T) {
	svc, _, mem, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateRequest
		check func(error) bool
	}{
		{"invalid name", CreateRequest{EntityType: "Conference"}, pkgerrors.IsValidation},
		{"unknown entity type", CreateRequest{EntityType: "webinar"}, pkgerrors.IsValidation},
		{"invalid registration type", CreateRequest{EntityType: "class", RegistrationTypes: []string{"bad type"}}, pkgerrors.IsValidation},
		{"duplicate registration type", CreateRequest{EntityType: "class", RegistrationTypes: []string{"a", "a"}}, pkgerrors.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
	assert.Empty(t, mem.Published())

	_, err := svc.Create(ctx, CreateRequest{EntityType: "class"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{EntityType: "class"})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestServiceUpdateAndToggle(t *testing.T) {
	svc, repo, mem, auditor := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{EntityType: "conference"})
	require.NoError(t, err)

	label := "Conferences"
	updated, err := svc.Update(ctx, "conference", UpdateRequest{Label: &label, RegistrationTypes: []string{"speaker"}})
	require.NoError(t, err)
	assert.Equal(t, "Conferences", updated.Label)
	assert.Equal(t, []string{"speaker"}, updated.RegistrationTypes)
	assert.Equal(t, models.ActionUpdate, lastEvent(t, mem).Action)

	toggled, err := svc.Toggle(ctx, "conference")
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)
	assert.Equal(t, models.ActionToggle, lastEvent(t, mem).Action)

	enabled, err := repo.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	require.Len(t, auditor.entries, 3)
	old, ok := auditor.entries[2].OldValue.(*Config)
	require.True(t, ok)
	assert.True(t, old.Enabled)
}

func TestServiceNotFound(t *testing.T) {
	svc, _, mem, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "conference")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = svc.Update(ctx, "conference", UpdateRequest{})
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = svc.Toggle(ctx, "conference")
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.True(t, pkgerrors.IsNotFound(svc.Delete(ctx, "conference")))
	assert.Empty(t, mem.Published())
}

func TestServiceDelete(t *testing.T) {
	svc, _, mem, auditor := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{EntityType: "class"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "class"))

	assert.Equal(t, models.ActionDelete, lastEvent(t, mem).Action)
	assert.Nil(t, auditor.entries[len(auditor.entries)-1].NewValue)

	configs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestServiceWithoutOptions(t *testing.T) {
	svc := NewService(newFakeRepository())
	cfg, err := svc.Create(context.Background(), CreateRequest{EntityType: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "anything", cfg.EntityType)
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(seeds("class", "conference"))
	configs, err := src.ListEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "class", configs[0].EntityType)
	assert.True(t, configs[1].Enabled)

	configs[0].RegistrationTypes[0] = "mutated"
	again, _ := src.ListEnabled(context.Background())
	assert.Equal(t, "default", again[0].RegistrationTypes[0])

	routing := RoutingConfigs(again)
	assert.Equal(t, "conference", routing[1].EntityType)
}

func seeds(entityTypes ...string) []config.EventTypeSeedConfig {
	out := make([]config.EventTypeSeedConfig, len(entityTypes))
	for i, et := range entityTypes {
		out[i] = config.EventTypeSeedConfig{EntityType: et, RegistrationTypes: []string{"default"}}
	}
	return out
}
