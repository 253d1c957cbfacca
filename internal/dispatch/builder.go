package dispatch

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rng/internal/access"
	"rng/internal/eventtype"
	"rng/internal/logger"
	"rng/internal/routing"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/logging"
	"rng/pkg/metrics"
)

// Builder turns a route collection into a gin engine. Engines are immutable
// once built; a rebuild produces a new one.
type Builder struct {
	handlers *HandlerRegistry
	policy   *access.Policy
	logger   logger.Logger
}

func NewBuilder(handlers *HandlerRegistry, policy *access.Policy, log logger.Logger) *Builder {
	return &Builder{handlers: handlers, policy: policy, logger: log}
}

// GinPath converts {name} placeholders into gin :name parameters.
func GinPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			segments[i] = ":" + segment[1:len(segment)-1]
		}
	}
	return strings.Join(segments, "/")
}

// Build registers every route of collection. Conflicting patterns, which gin
// reports by panicking, are returned as ErrRouteConflict.
func (b *Builder) Build(collection *routing.RouteCollection, eventTypes map[string]eventtype.Config) (http.Handler, error) {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkgerrors.ToErrorResponse(pkgerrors.ErrNotFound.WithDetail("path", c.Request.URL.Path)))
	})

	for _, route := range collection.All() {
		route := route
		var eventConfig *eventtype.Config
		if cfg, ok := eventTypes[route.EventType()]; ok {
			cfg := cfg
			eventConfig = &cfg
		}

		chain := []gin.HandlerFunc{
			b.matchHandler(route),
			b.accessHandler(eventConfig),
			b.handlers.Handler(bindingName(route)),
		}
		path := GinPath(route.Path)

		for _, method := range route.Methods() {
			method := method
			err := pkgerrors.Capture(pkgerrors.ErrRouteConflict, func() {
				engine.Handle(method, path, chain...)
			})
			if err != nil {
				return nil, pkgerrors.Wrap(err, pkgerrors.ErrRouteConflict).
					WithDetail("route", route.Name).
					WithDetail("path", route.Path)
			}
		}
	}

	return engine, nil
}

func bindingName(route routing.RouteDescriptor) string {
	_, name := route.Binding()
	return name
}

func (b *Builder) matchHandler(route routing.RouteDescriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m := newMatch(c, route)
		c.Set(matchKey, m)
		c.Set(titleKey, b.handlers.Title(m))
		c.Request = c.Request.WithContext(logging.WithRouteName(c.Request.Context(), route.Name))

		c.Next()

		kind, _ := route.Binding()
		metrics.ObserveDispatch(string(kind), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func (b *Builder) accessHandler(eventConfig *eventtype.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, _ := MatchFrom(c)
		req := &access.Request{
			Route:       m.Route,
			Params:      m.Params,
			Header:      c.Request.Header,
			EventConfig: eventConfig,
		}

		ctx := c.Request.Context()
		decision, err := b.policy.Evaluate(ctx, req)
		if err != nil {
			b.logger.ErrorwCtx(ctx, "Access check failed", "error", err, "flag", decision.Flag)
			appErr := pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable).WithDetail("flag", decision.Flag)
			c.AbortWithStatusJSON(appErr.Status, pkgerrors.ToErrorResponse(appErr))
			return
		}

		if !decision.Allowed() {
			b.logger.DebugwCtx(ctx, "Access denied", "flag", decision.Flag, "reason", decision.Reason)
			appErr := pkgerrors.ErrForbidden
			if decision.Result == access.NotFound {
				appErr = pkgerrors.ErrNotFound
			}
			c.AbortWithStatusJSON(decision.HTTPStatus(), pkgerrors.ToErrorResponse(
				appErr.WithDetail("flag", decision.Flag).WithDetail("reason", decision.Reason),
			))
			return
		}

		c.Next()
	}
}
