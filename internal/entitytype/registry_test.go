package entitytype

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/config"
	"rng/internal/routing"
	pkgerrors "rng/pkg/errors"
)

type fakeRepository struct {
	mu   sync.Mutex
	defs map[string]Definition
	err  error
}

func newFakeRepository(defs ...Definition) *fakeRepository {
	r := &fakeRepository{defs: make(map[string]Definition)}
	for _, d := range defs {
		d.Source = SourceMongoDB
		r.defs[d.ID] = d
	}
	return r
}

func (r *fakeRepository) Create(ctx context.Context, def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.ID]; ok {
		return pkgerrors.ErrConflict.WithDetail("id", def.ID)
	}
	def.Source = SourceMongoDB
	r.defs[def.ID] = *copyDefinition(def)
	return nil
}

func (r *fakeRepository) List(ctx context.Context) ([]Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, *copyDefinition(&d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepository) Get(ctx context.Context, id string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	d, ok := r.defs[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return copyDefinition(&d), nil
}

func (r *fakeRepository) Update(ctx context.Context, def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.ID]; !ok {
		return pkgerrors.ErrNotFound.WithDetail("id", def.ID)
	}
	r.defs[def.ID] = *copyDefinition(def)
	return nil
}

func (r *fakeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[id]; !ok {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	delete(r.defs, id)
	return nil
}

var staticTypes = []config.EntityTypeConfig{
	{ID: "conference", Label: "Conference", LinkTemplates: map[string]string{"canonical": "/conference/{conference}"}},
	{ID: "page", Label: "Page", LinkTemplates: map[string]string{}},
}

func TestRegistryMergesStoredOverStatic(t *testing.T) {
	repo := newFakeRepository(
		Definition{ID: "conference", LinkTemplates: map[string]string{"canonical": "/events/{conference}"}},
		Definition{ID: "class", LinkTemplates: map[string]string{"canonical": "/class/{class}"}},
	)
	registry := NewRegistry(staticTypes, repo)
	ctx := context.Background()

	defs, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, []string{"class", "conference", "page"}, []string{defs[0].ID, defs[1].ID, defs[2].ID})
	assert.Equal(t, SourceMongoDB, defs[1].Source)
	assert.Equal(t, SourceStatic, defs[2].Source)

	snapshot, err := registry.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Len())

	def, err := snapshot.Resolve("conference")
	require.NoError(t, err)
	assert.Equal(t, "/events/{conference}", def.LinkTemplate(routing.CanonicalTemplate))

	def, err = snapshot.Resolve("page")
	require.NoError(t, err)
	assert.Empty(t, def.LinkTemplate(routing.CanonicalTemplate))

	_, err = snapshot.Resolve("webinar")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSnapshotDrivesDeriver(t *testing.T) {
	registry := NewRegistry(staticTypes, nil)
	snapshot, err := registry.Snapshot(context.Background())
	require.NoError(t, err)

	routes, err := routing.DeriveRoutes([]routing.EventTypeConfig{{EntityType: "conference"}, {EntityType: "page"}}, snapshot)
	require.NoError(t, err)
	assert.Len(t, routes, 8)

	_, err = routing.DeriveRoutes([]routing.EventTypeConfig{{EntityType: "webinar"}}, snapshot)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRegistryGetAndExists(t *testing.T) {
	repo := newFakeRepository(Definition{ID: "class"})
	registry := NewRegistry(staticTypes, repo)
	ctx := context.Background()

	def, err := registry.Get(ctx, "conference")
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, def.Source)

	ok, err := registry.Exists(ctx, "class")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = registry.Exists(ctx, "webinar")
	require.NoError(t, err)
	assert.False(t, ok)

	repo.err = errors.New("connection refused")
	_, err = registry.Exists(ctx, "class")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrServiceUnavailable.Status, pkgerrors.ToHTTPStatus(err))

	_, err = registry.Snapshot(ctx)
	assert.Error(t, err)
}

func TestRegistryReturnsCopies(t *testing.T) {
	registry := NewRegistry(staticTypes, nil)
	def, err := registry.Get(context.Background(), "conference")
	require.NoError(t, err)
	def.LinkTemplates["canonical"] = "/mutated"

	again, err := registry.Get(context.Background(), "conference")
	require.NoError(t, err)
	assert.Equal(t, "/conference/{conference}", again.LinkTemplate("canonical"))
}

func TestValidateTemplates(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{"valid", CreateRequest{ID: "conference", LinkTemplates: map[string]string{"canonical": "/conference/{conference}"}}, false},
		{"no templates", CreateRequest{ID: "page"}, false},
		{"invalid id", CreateRequest{ID: "Conference"}, true},
		{"relative template", CreateRequest{ID: "x", LinkTemplates: map[string]string{"canonical": "conference/{conference}"}}, true},
		{"partial variable", CreateRequest{ID: "x", LinkTemplates: map[string]string{"canonical": "/conf-{id}"}}, true},
		{"empty variable", CreateRequest{ID: "x", LinkTemplates: map[string]string{"canonical": "/x/{}"}}, true},
		{"empty name", CreateRequest{ID: "x", LinkTemplates: map[string]string{"": "/x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
