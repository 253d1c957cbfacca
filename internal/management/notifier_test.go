package management

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/broker"
	"rng/internal/logger"
	"rng/pkg/errors"
	"rng/pkg/models"
)

func TestConfigEventProducerPublishes(t *testing.T) {
	mem := broker.NewMemoryBroker()
	p := NewConfigEventProducer(mem, "rng.config")

	ctx := WithChangedBy(context.Background(), "alice")
	require.NoError(t, p.PublishEntityTypeEvent(ctx, models.ActionUpdate, "conference"))
	require.NoError(t, p.PublishRegistrationStatusEvent(ctx, models.ActionUpdate, "conference", "42"))

	published := mem.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "rng.config", published[0].Topic)

	event, err := models.DecodeConfigEvent(published[0].Message)
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeEntityTypeUpdated, event.EventType)
	assert.Equal(t, models.ServiceTypeRouting, event.ServiceType)
	assert.Equal(t, "conference", event.Subject)
	assert.Equal(t, "alice", event.ChangedBy)
	assert.Equal(t, "management-service", published[0].Message.Source)

	status, err := models.DecodeConfigEvent(published[1].Message)
	require.NoError(t, err)
	assert.Equal(t, "42", status.Metadata["event_id"])
}

func TestConfigEventProducerDisabled(t *testing.T) {
	var nilProducer *ConfigEventProducer
	assert.NoError(t, nilProducer.PublishEventTypeEvent(context.Background(), models.ActionCreate, "x"))
	assert.NoError(t, NewConfigEventProducer(nil, "topic").PublishEventTypeEvent(context.Background(), models.ActionCreate, "x"))
	assert.NoError(t, NewConfigEventProducer(broker.NewMemoryBroker(), "").PublishEventTypeEvent(context.Background(), models.ActionCreate, "x"))
}

func TestChangedByMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ChangedByMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ChangedBy(c.Request.Context())) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ChangedByHeader, "bob")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "bob", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "system", w.Body.String())
}

func TestBaseHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{Logger: logger.NopLogger()}

	router := gin.New()
	router.GET("/err", func(c *gin.Context) { h.HandleError(c, errors.ErrNotFound.WithDetail("id", "x")) })
	router.GET("/limit", func(c *gin.Context) { c.JSON(http.StatusOK, Limit(c)) })
	router.POST("/bind", func(c *gin.Context) {
		var body struct {
			Name string `json:"name" binding:"required"`
		}
		if h.BindJSON(c, &body) {
			c.Status(http.StatusNoContent)
		}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	for query, want := range map[string]string{"": "100", "?limit=5": "5", "?limit=99999": "1000", "?limit=-1": "100"} {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limit"+query, nil))
		assert.Equal(t, want, w.Body.String(), query)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
