package eventtype

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rng/internal/logger"
	"rng/internal/management"
)

type Handler struct {
	management.BaseHandler
	service *Service
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: management.BaseHandler{Logger: log},
		service:     service,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		eventTypes := v1.Group("/event-types")
		{
			eventTypes.GET("", h.List)
			eventTypes.POST("", h.Create)
			eventTypes.GET("/:entity_type", h.Get)
			eventTypes.PUT("/:entity_type", h.Update)
			eventTypes.DELETE("/:entity_type", h.Delete)
			eventTypes.POST("/:entity_type/toggle", h.Toggle)
		}
	}
}

// List godoc
// @Summary      List event type configs
// @Description  Get every entity type designated as an event type
// @Tags         event-types
// @Produce      json
// @Success      200  {array}   Config
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /event-types [get]
func (h *Handler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

// Create godoc
// @Summary      Designate an event type
// @Description  Mark an entity type as an event type so its event routes are derived
// @Tags         event-types
// @Accept       json
// @Produce      json
// @Param        config  body      CreateRequest  true  "Event type config"
// @Success      201     {object}  Config
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      409     {object}  errors.ErrorResponse
// @Failure      500     {object}  errors.ErrorResponse
// @Router       /event-types [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// Get godoc
// @Summary      Get an event type config
// @Tags         event-types
// @Produce      json
// @Param        entity_type  path      string  true  "Entity type"
// @Success      200          {object}  Config
// @Failure      404          {object}  errors.ErrorResponse
// @Router       /event-types/{entity_type} [get]
func (h *Handler) Get(c *gin.Context) {
	cfg, err := h.service.Get(c.Request.Context(), c.Param("entity_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Update godoc
// @Summary      Update an event type config
// @Tags         event-types
// @Accept       json
// @Produce      json
// @Param        entity_type  path      string         true  "Entity type"
// @Param        config       body      UpdateRequest  true  "Changed fields"
// @Success      200          {object}  Config
// @Failure      400          {object}  errors.ErrorResponse
// @Failure      404          {object}  errors.ErrorResponse
// @Failure      500          {object}  errors.ErrorResponse
// @Router       /event-types/{entity_type} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg, err := h.service.Update(c.Request.Context(), c.Param("entity_type"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Toggle godoc
// @Summary      Enable or disable an event type
// @Tags         event-types
// @Produce      json
// @Param        entity_type  path      string  true  "Entity type"
// @Success      200          {object}  Config
// @Failure      404          {object}  errors.ErrorResponse
// @Router       /event-types/{entity_type}/toggle [post]
func (h *Handler) Toggle(c *gin.Context) {
	cfg, err := h.service.Toggle(c.Request.Context(), c.Param("entity_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Delete godoc
// @Summary      Remove an event type config
// @Tags         event-types
// @Param        entity_type  path  string  true  "Entity type"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /event-types/{entity_type} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("entity_type")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
