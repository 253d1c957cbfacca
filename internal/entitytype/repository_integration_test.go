//go:build integration

package entitytype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/constants"
	"rng/internal/testinfra"
	pkgerrors "rng/pkg/errors"
)

func TestMongoRepository(t *testing.T) {
	infra := testinfra.Mongo(t)
	repo := NewMongoRepository(infra.MongoDB, constants.ServiceManagement)
	ctx := context.Background()

	def := &Definition{ID: "conference", Label: "Conference", LinkTemplates: map[string]string{"canonical": "/conference/{conference}"}}
	require.NoError(t, repo.Create(ctx, def))

	err := repo.Create(ctx, &Definition{ID: "conference"})
	assert.True(t, pkgerrors.IsConflict(err))

	got, err := repo.Get(ctx, "conference")
	require.NoError(t, err)
	assert.Equal(t, "/conference/{conference}", got.LinkTemplate("canonical"))
	assert.Equal(t, SourceMongoDB, got.Source)

	got.LinkTemplates["canonical"] = "/events/{conference}"
	require.NoError(t, repo.Update(ctx, got))

	registry := NewRegistry(nil, repo)
	snapshot, err := registry.Snapshot(ctx)
	require.NoError(t, err)
	resolved, err := snapshot.Resolve("conference")
	require.NoError(t, err)
	assert.Equal(t, "/events/{conference}", resolved.LinkTemplate("canonical"))

	require.NoError(t, repo.Delete(ctx, "conference"))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, "conference")))

	defs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)
}
