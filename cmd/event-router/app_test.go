package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/config"
	"rng/internal/constants"
	"rng/internal/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Routing: config.RoutingConfig{
			Namespace: "rng",
			EntityTypes: []config.EntityTypeConfig{
				{ID: "conference", LinkTemplates: map[string]string{"canonical": "/conference/{conference}"}},
			},
			EventTypes: []config.EventTypeSeedConfig{{EntityType: "conference"}},
		},
		Access: config.AccessConfig{
			PermissionHeader:               constants.DefaultPermissionHeader,
			RegistrationsAllowedExpression: constants.DefaultRegistrationsAllowedExpression,
		},
	}
	return NewApp(cfg, logger.NopLogger())
}

func serve(a *App, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, req)
	return w
}

func TestRegistrationOpensWithoutRedis(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.initDatabases(ctx))
	require.NoError(t, a.initRouting())
	a.initHTTPServer()
	_, err := a.rebuilder.Rebuild(ctx, "startup")
	require.NoError(t, err)

	w := serve(a, http.MethodGet, "/conference/1/register", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(a, http.MethodPut, "/api/v1/events/conference/1/registration", `{"status":"open"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(a, http.MethodGet, "/conference/1/register", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// other events keep their own status
	assert.Equal(t, http.StatusForbidden, serve(a, http.MethodGet, "/conference/2/register", "").Code)

	w = serve(a, http.MethodDelete, "/api/v1/events/conference/1/registration", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusForbidden, serve(a, http.MethodGet, "/conference/1/register", "").Code)
}

func TestRegistrationAPINotServedWithRedis(t *testing.T) {
	a := newTestApp(t)
	a.redisClient = redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = a.redisClient.Close() })

	require.NoError(t, a.initRouting())
	a.initHTTPServer()
	_, err := a.rebuilder.Rebuild(context.Background(), "startup")
	require.NoError(t, err)

	assert.Nil(t, a.registrations)
	w := serve(a, http.MethodPut, "/api/v1/events/conference/1/registration", `{"status":"open"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
