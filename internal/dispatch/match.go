package dispatch

import (
	"github.com/gin-gonic/gin"

	"rng/internal/routing"
)

const matchKey = "rng.match"

// EntityRef is a path parameter converted through its type hint.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Match describes the derived route a request was dispatched to.
type Match struct {
	Route    routing.RouteDescriptor
	Params   map[string]string
	Entities map[string]EntityRef
}

func newMatch(c *gin.Context, route routing.RouteDescriptor) *Match {
	m := &Match{
		Route:    route,
		Params:   make(map[string]string, len(c.Params)),
		Entities: make(map[string]EntityRef, len(route.Parameters)),
	}
	for _, p := range c.Params {
		m.Params[p.Key] = p.Value
	}
	for name, value := range m.Params {
		if entityType, ok := route.EntityType(name); ok {
			m.Entities[name] = EntityRef{Type: entityType, ID: value}
		}
	}
	return m
}

// Event returns the event entity of the match.
func (m *Match) Event() EntityRef {
	return m.Entities[m.Route.EventType()]
}

func MatchFrom(c *gin.Context) (*Match, bool) {
	v, ok := c.Get(matchKey)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Match)
	return m, ok
}
