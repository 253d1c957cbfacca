// Package access evaluates the requirement flags carried by derived routes.
package access

import (
	"context"
	"net/http"
	"sync"

	"rng/internal/eventtype"
	"rng/internal/registration"
	"rng/internal/routing"
)

type Result string

const (
	Allowed   Result = "allowed"
	Forbidden Result = "forbidden"
	NotFound  Result = "not_found"
)

// Decision is the outcome of a policy evaluation. Flag names the requirement
// that denied the request.
type Decision struct {
	Result Result `json:"result"`
	Flag   string `json:"flag,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (d Decision) Allowed() bool {
	return d.Result == Allowed
}

func (d Decision) HTTPStatus() int {
	switch d.Result {
	case Allowed:
		return http.StatusOK
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

func allow() Decision {
	return Decision{Result: Allowed}
}

func deny(result Result, reason string) Decision {
	return Decision{Result: result, Reason: reason}
}

// Request is one dispatch under evaluation. The registration status of the
// event is loaded at most once.
type Request struct {
	Route       routing.RouteDescriptor
	Params      map[string]string
	Header      http.Header
	EventConfig *eventtype.Config

	statusOnce sync.Once
	status     *registration.EventStatus
	statusErr  error
}

func (r *Request) EventType() string {
	return r.Route.EventType()
}

// EventID is the value of the path parameter named after the event type.
func (r *Request) EventID() string {
	return r.Params[r.EventType()]
}

// Status returns the registration status of the event, or ErrNotFound.
func (r *Request) Status(ctx context.Context, store registration.Store) (*registration.EventStatus, error) {
	r.statusOnce.Do(func() {
		r.status, r.statusErr = store.Get(ctx, r.EventType(), r.EventID())
	})
	return r.status, r.statusErr
}

// Checker enforces one requirement flag.
type Checker interface {
	Flag() string
	Check(ctx context.Context, req *Request) (Decision, error)
}
