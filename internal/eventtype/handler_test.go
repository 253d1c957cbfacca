package eventtype

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, _, _ := newTestService(t)
	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/event-types", `{"entity_type":"conference","label":"Conference"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "conference", created.EntityType)
	assert.True(t, created.Enabled)

	w = do(router, http.MethodPost, "/api/v1/event-types", `{"entity_type":"conference"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPut, "/api/v1/event-types/conference", `{"registration_types":["attendee"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attendee"`)

	w = do(router, http.MethodPost, "/api/v1/event-types/conference/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enabled":false`)

	w = do(router, http.MethodGet, "/api/v1/event-types", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(router, http.MethodDelete, "/api/v1/event-types/conference", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, http.MethodGet, "/api/v1/event-types/conference", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing entity type", `{"label":"x"}`},
		{"malformed json", `{`},
		{"invalid entity type", `{"entity_type":"Bad Name"}`},
		{"unknown entity type", `{"entity_type":"webinar"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/event-types", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		})
	}
}
