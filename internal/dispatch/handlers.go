package dispatch

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// TitleCallback computes a page title from the matched route.
type TitleCallback func(m *Match) string

// HandlerRegistry maps binding names (form classes, controller methods) to
// gin handlers. Bindings without a registered handler fall back to Describe.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]gin.HandlerFunc
	titles   map[string]TitleCallback
}

func NewHandlerRegistry() *HandlerRegistry {
	r := &HandlerRegistry{
		handlers: make(map[string]gin.HandlerFunc),
		titles:   make(map[string]TitleCallback),
	}
	r.RegisterTitle("RegistrationController.AddPageTitle", registrationAddTitle)
	return r
}

func (r *HandlerRegistry) Register(binding string, handler gin.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[binding] = handler
}

func (r *HandlerRegistry) RegisterTitle(name string, callback TitleCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles[name] = callback
}

func (r *HandlerRegistry) Handler(binding string) gin.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[binding]; ok {
		return h
	}
	return Describe
}

// Title resolves the static title or title callback of the matched route.
func (r *HandlerRegistry) Title(m *Match) string {
	if name := m.Route.TitleCallback(); name != "" {
		r.mu.RLock()
		callback, ok := r.titles[name]
		r.mu.RUnlock()
		if ok {
			return callback(m)
		}
	}
	return m.Route.Title()
}

// DispatchResponse is the body rendered by Describe.
type DispatchResponse struct {
	Route      string               `json:"route"`
	Method     string               `json:"method"`
	Handler    string               `json:"handler"`
	Binding    string               `json:"binding"`
	Title      string               `json:"title"`
	EventType  string               `json:"event_type"`
	Parameters map[string]EntityRef `json:"parameters"`
}

// Describe renders the dispatch itself. It stands in for bindings whose
// implementation lives outside the router.
func Describe(c *gin.Context) {
	m, ok := MatchFrom(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	kind, handler := m.Route.Binding()
	c.JSON(http.StatusOK, DispatchResponse{
		Route:      m.Route.Name,
		Method:     c.Request.Method,
		Handler:    handler,
		Binding:    string(kind),
		Title:      c.GetString(titleKey),
		EventType:  m.Route.EventType(),
		Parameters: m.Entities,
	})
}

const titleKey = "rng.title"

func registrationAddTitle(m *Match) string {
	return fmt.Sprintf("Add %s registration", m.Params["registration_type"])
}
