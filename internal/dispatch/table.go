package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"rng/internal/eventtype"
	"rng/internal/routing"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/health"
)

// Generation is one published route table.
type Generation struct {
	Version    uint64
	BuiltAt    time.Time
	Trigger    string
	Collection *routing.RouteCollection
	EventTypes map[string]eventtype.Config
	// Skipped lists enabled event types without a canonical link template.
	Skipped []string

	handler http.Handler
}

// Table serves the current generation. Readers see either the previous or the
// next generation, never a partial one.
type Table struct {
	mu      sync.RWMutex
	current *Generation
}

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Current() *Generation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Publish installs g and assigns it the next version number.
func (t *Table) Publish(g *Generation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		g.Version = t.current.Version + 1
	} else {
		g.Version = 1
	}
	t.current = g
}

func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g := t.Current()
	if g == nil || g.handler == nil {
		writeNotBuilt(w)
		return
	}
	g.handler.ServeHTTP(w, r)
}

func writeNotBuilt(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(pkgerrors.ErrRoutesNotBuilt.Status)
	_ = json.NewEncoder(w).Encode(pkgerrors.ToErrorResponse(pkgerrors.ErrRoutesNotBuilt))
}

// HealthChecker reports degraded until the first generation is published.
func (t *Table) HealthChecker() health.Checker {
	return health.NewFuncChecker("route_table", func(ctx context.Context) error {
		if t.Current() == nil {
			return fmt.Errorf("%w: no route table published", health.ErrDegraded)
		}
		return nil
	})
}
