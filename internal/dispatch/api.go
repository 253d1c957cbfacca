package dispatch

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rng/internal/logger"
	"rng/internal/routing"
	"rng/pkg/errors"
)

type RouteInfo struct {
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Methods    []string          `json:"methods"`
	Binding    string            `json:"binding"`
	Handler    string            `json:"handler"`
	Title      string            `json:"title,omitempty"`
	TitleFn    string            `json:"title_callback,omitempty"`
	EventType  string            `json:"event_type"`
	Flags      []string          `json:"flags"`
	Parameters map[string]string `json:"parameters"`
}

func NewRouteInfo(d routing.RouteDescriptor) RouteInfo {
	kind, handler := d.Binding()
	return RouteInfo{
		Name:       d.Name,
		Path:       d.Path,
		Methods:    d.Methods(),
		Binding:    string(kind),
		Handler:    handler,
		Title:      d.Title(),
		TitleFn:    d.TitleCallback(),
		EventType:  d.EventType(),
		Flags:      d.Flags(),
		Parameters: d.Parameters,
	}
}

type TableInfo struct {
	Version    uint64      `json:"version"`
	BuiltAt    time.Time   `json:"built_at"`
	Trigger    string      `json:"trigger"`
	EventTypes []string    `json:"event_types"`
	Skipped    []string    `json:"skipped"`
	Routes     []RouteInfo `json:"routes"`
}

func NewTableInfo(g *Generation) TableInfo {
	info := TableInfo{
		Version:    g.Version,
		BuiltAt:    g.BuiltAt,
		Trigger:    g.Trigger,
		EventTypes: make([]string, 0, len(g.EventTypes)),
		Skipped:    g.Skipped,
		Routes:     make([]RouteInfo, 0, g.Collection.Len()),
	}
	for _, d := range g.Collection.All() {
		info.Routes = append(info.Routes, NewRouteInfo(d))
	}
	seen := make(map[string]bool, len(g.EventTypes))
	for _, d := range g.Collection.All() {
		if t := d.EventType(); t != "" && !seen[t] {
			seen[t] = true
			info.EventTypes = append(info.EventTypes, t)
		}
	}
	return info
}

// Handler serves route table introspection.
type Handler struct {
	table     *Table
	rebuilder *Rebuilder
	logger    logger.Logger
}

func NewHandler(table *Table, rebuilder *Rebuilder, log logger.Logger) *Handler {
	return &Handler{table: table, rebuilder: rebuilder, logger: log}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	routes := router.Group("/api/v1/routes")
	{
		routes.GET("", h.ListRoutes)
		routes.GET("/:name", h.GetRoute)
		routes.POST("/rebuild", h.RebuildRoutes)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	}
	c.JSON(status, errors.ToErrorResponse(err))
}

func (h *Handler) ListRoutes(c *gin.Context) {
	g := h.table.Current()
	if g == nil {
		h.handleError(c, errors.ErrRoutesNotBuilt)
		return
	}
	c.JSON(http.StatusOK, NewTableInfo(g))
}

func (h *Handler) GetRoute(c *gin.Context) {
	g := h.table.Current()
	if g == nil {
		h.handleError(c, errors.ErrRoutesNotBuilt)
		return
	}
	d, ok := g.Collection.Get(c.Param("name"))
	if !ok {
		h.handleError(c, errors.ErrNotFound.WithDetail("route", c.Param("name")))
		return
	}
	c.JSON(http.StatusOK, NewRouteInfo(d))
}

func (h *Handler) RebuildRoutes(c *gin.Context) {
	g, err := h.rebuilder.Rebuild(c.Request.Context(), TriggerAPI)
	if err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrInternal))
		return
	}
	c.JSON(http.StatusOK, NewTableInfo(g))
}
