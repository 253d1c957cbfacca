package entitytype

import (
	"context"
	"sort"

	"rng/internal/config"
	"rng/internal/routing"
	pkgerrors "rng/pkg/errors"
)

// Registry merges statically configured definitions with those stored in
// MongoDB. Stored definitions replace static ones with the same ID.
type Registry struct {
	static map[string]Definition
	repo   Repository
}

func NewRegistry(static []config.EntityTypeConfig, repo Repository) *Registry {
	defs := make(map[string]Definition, len(static))
	for _, cfg := range static {
		defs[cfg.ID] = fromConfig(cfg)
	}
	return &Registry{static: defs, repo: repo}
}

// Snapshot loads every definition once and returns a resolver over them.
func (r *Registry) Snapshot(ctx context.Context) (*Snapshot, error) {
	defs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Definition, len(defs))
	for i := range defs {
		byID[defs[i].ID] = &defs[i]
	}
	return &Snapshot{definitions: byID}, nil
}

// List returns the merged definitions sorted by ID.
func (r *Registry) List(ctx context.Context) ([]Definition, error) {
	merged := make(map[string]Definition, len(r.static))
	for id, def := range r.static {
		merged[id] = *copyDefinition(&def)
	}

	if r.repo != nil {
		stored, err := r.repo.List(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
		}
		for _, def := range stored {
			merged[def.ID] = def
		}
	}

	out := make([]Definition, 0, len(merged))
	for _, def := range merged {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Registry) Get(ctx context.Context, id string) (*Definition, error) {
	if r.repo != nil {
		def, err := r.repo.Get(ctx, id)
		if err == nil {
			return def, nil
		}
		if !pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
		}
	}
	if def, ok := r.static[id]; ok {
		return copyDefinition(&def), nil
	}
	return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
}

func (r *Registry) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.Get(ctx, id)
	if pkgerrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// IsStatic reports whether id is declared in the static configuration.
func (r *Registry) IsStatic(id string) bool {
	_, ok := r.static[id]
	return ok
}

// Snapshot is a point-in-time view of the registry.
type Snapshot struct {
	definitions map[string]*Definition
}

var _ routing.Resolver = (*Snapshot)(nil)

func (s *Snapshot) Resolve(entityType string) (routing.EntityTypeDefinition, error) {
	def, ok := s.definitions[entityType]
	if !ok {
		return nil, pkgerrors.ErrNotFound.
			WithMessage("entity type not found").
			WithDetail("entity_type", entityType)
	}
	return def, nil
}

func (s *Snapshot) Len() int {
	return len(s.definitions)
}
