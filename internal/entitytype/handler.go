package entitytype

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
	entityTypes := router.Group("/api/v1/entity-types")
	{
		entityTypes.GET("", h.List)
		entityTypes.POST("", h.Create)
		entityTypes.GET("/:id", h.Get)
		entityTypes.PUT("/:id", h.Update)
		entityTypes.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary      List entity type definitions
// @Description  Static and stored definitions, stored ones taking precedence
// @Tags         entity-types
// @Produce      json
// @Success      200  {array}   Definition
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /entity-types [get]
func (h *Handler) List(c *gin.Context) {
	defs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, defs)
}

// Create godoc
// @Summary      Store an entity type definition
// @Tags         entity-types
// @Accept       json
// @Produce      json
// @Param        definition  body      CreateRequest  true  "Entity type definition"
// @Success      201         {object}  Definition
// @Failure      400         {object}  errors.ErrorResponse
// @Failure      409         {object}  errors.ErrorResponse
// @Router       /entity-types [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	def, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, def)
}

// Get godoc
// @Summary      Get an entity type definition
// @Tags         entity-types
// @Produce      json
// @Param        id   path      string  true  "Entity type"
// @Success      200  {object}  Definition
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /entity-types/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	def, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

// Update godoc
// @Summary      Update a stored entity type definition
// @Tags         entity-types
// @Accept       json
// @Produce      json
// @Param        id          path      string         true  "Entity type"
// @Param        definition  body      UpdateRequest  true  "Changed fields"
// @Success      200         {object}  Definition
// @Failure      400         {object}  errors.ErrorResponse
// @Failure      404         {object}  errors.ErrorResponse
// @Failure      409         {object}  errors.ErrorResponse
// @Router       /entity-types/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	def, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

// Delete godoc
// @Summary      Delete a stored entity type definition
// @Tags         entity-types
// @Param        id  path  string  true  "Entity type"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /entity-types/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
