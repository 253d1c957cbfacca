package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/config"
	"rng/internal/logger"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host: "db", Port: 5432, User: "rng", Password: "secret", DBName: "routes",
	})
	assert.Equal(t, "postgres://rng:secret@db:5432/routes?sslmode=disable", dsn)
}

func TestOptionalDatabasesAreSkipped(t *testing.T) {
	dc := NewDatabaseConnector(&config.Config{}, logger.NopLogger())
	ctx := context.Background()

	rdb, err := dc.InitRedis(ctx)
	require.NoError(t, err)
	assert.Nil(t, rdb)

	db, err := dc.InitPostgreSQL(ctx)
	require.NoError(t, err)
	assert.Nil(t, db)

	mc, err := dc.InitMongoDB(ctx)
	require.NoError(t, err)
	assert.Nil(t, mc)

	assert.Empty(t, dc.ShutdownDatabases(ctx, nil, nil, nil))
}

func TestBrokerDisabled(t *testing.T) {
	base := NewBase(&config.Config{}, logger.NopLogger())
	require.NoError(t, base.InitProducer())
	require.NoError(t, base.InitConsumer("test"))
	assert.Nil(t, base.Producer)
	assert.Nil(t, base.Consumer)
	assert.NoError(t, base.Shutdown(context.Background(), nil))
}
