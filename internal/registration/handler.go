package registration

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
	events := router.Group("/api/v1/events/:type/:id")
	{
		events.GET("/registration", h.Get)
		events.PUT("/registration", h.Put)
		events.DELETE("/registration", h.Delete)
	}
}

// Get godoc
// @Summary      Get the registration window of an event
// @Tags         registration
// @Produce      json
// @Param        type  path      string  true  "Event type"
// @Param        id    path      string  true  "Event ID"
// @Success      200   {object}  EventStatus
// @Failure      404   {object}  errors.ErrorResponse
// @Failure      503   {object}  errors.ErrorResponse
// @Router       /events/{type}/{id}/registration [get]
func (h *Handler) Get(c *gin.Context) {
	status, err := h.service.Get(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Put godoc
// @Summary      Set the registration window of an event
// @Tags         registration
// @Accept       json
// @Produce      json
// @Param        type    path      string      true  "Event type"
// @Param        id      path      string      true  "Event ID"
// @Param        status  body      PutRequest  true  "Registration status"
// @Success      200     {object}  EventStatus
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      503     {object}  errors.ErrorResponse
// @Router       /events/{type}/{id}/registration [put]
func (h *Handler) Put(c *gin.Context) {
	var req PutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	status, err := h.service.Put(c.Request.Context(), c.Param("type"), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Delete godoc
// @Summary      Remove the registration window of an event
// @Tags         registration
// @Param        type  path  string  true  "Event type"
// @Param        id    path  string  true  "Event ID"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /events/{type}/{id}/registration [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("type"), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
