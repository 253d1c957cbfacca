package access

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rng/internal/constants"
	"rng/internal/registration"
	"rng/internal/routing"
	"rng/pkg/cel"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/metrics"
)

// EventChecker requires the route's event type to be a configured, enabled
// event type and the event parameter to be present.
type EventChecker struct{}

func (EventChecker) Flag() string {
	return routing.FlagEvent
}

func (EventChecker) Check(ctx context.Context, req *Request) (Decision, error) {
	eventType := req.EventType()
	if eventType == "" || req.EventConfig == nil || req.EventConfig.EntityType != eventType || !req.EventConfig.Enabled {
		return deny(NotFound, "not an event type"), nil
	}
	if req.EventID() == "" {
		return deny(NotFound, "missing event"), nil
	}
	return allow(), nil
}

// ManageChecker grants event management to callers whose permission header
// lists "administer rng" or "manage <type> event".
type ManageChecker struct {
	header string
}

func NewManageChecker(header string) *ManageChecker {
	return &ManageChecker{header: header}
}

func (c *ManageChecker) Flag() string {
	return routing.FlagEventManage
}

func (c *ManageChecker) Check(ctx context.Context, req *Request) (Decision, error) {
	required := ManagePermission(req.EventType())
	for _, value := range req.Header.Values(c.header) {
		for _, permission := range strings.Split(value, ",") {
			permission = strings.TrimSpace(permission)
			if permission == constants.PermissionAdministerRNG || permission == required {
				return allow(), nil
			}
		}
	}
	return deny(Forbidden, "missing permission "+required), nil
}

func ManagePermission(eventType string) string {
	return fmt.Sprintf("manage %s event", eventType)
}

// RegistrationsAllowedChecker opens registration when the event's status
// satisfies the configured expression. Events without a status are closed.
type RegistrationsAllowedChecker struct {
	store   registration.Store
	program *cel.Program
	now     func() time.Time
}

func NewRegistrationsAllowedChecker(store registration.Store, program *cel.Program) *RegistrationsAllowedChecker {
	return &RegistrationsAllowedChecker{store: store, program: program, now: time.Now}
}

func (c *RegistrationsAllowedChecker) Flag() string {
	return routing.FlagRegistrationsAllowed
}

func (c *RegistrationsAllowedChecker) Check(ctx context.Context, req *Request) (Decision, error) {
	status, err := req.Status(ctx, c.store)
	if pkgerrors.IsNotFound(err) {
		metrics.IncRegistrationStatusLookup("miss")
		return deny(Forbidden, "registration closed"), nil
	}
	if err != nil {
		metrics.IncRegistrationStatusLookup("error")
		return Decision{}, err
	}
	metrics.IncRegistrationStatusLookup("hit")

	open, err := c.program.Eval(ctx, status.Vars(c.now()))
	if err != nil {
		return Decision{}, pkgerrors.ErrInternal.WithCause(err).WithDetail("expression", c.program.Expression())
	}
	if !open {
		return deny(Forbidden, "registration closed"), nil
	}
	return allow(), nil
}

// RegistrationTypeChecker requires the registration_type parameter to be one
// the event accepts. The accepted list comes from the event's status, then the
// event type config, then the global default.
type RegistrationTypeChecker struct {
	store    registration.Store
	defaults []string
}

func NewRegistrationTypeChecker(store registration.Store, defaults []string) *RegistrationTypeChecker {
	return &RegistrationTypeChecker{store: store, defaults: defaults}
}

func (c *RegistrationTypeChecker) Flag() string {
	return routing.FlagEventRegistrationType
}

func (c *RegistrationTypeChecker) Check(ctx context.Context, req *Request) (Decision, error) {
	requested := req.Params[routing.ParamRegistrationType]
	if requested == "" {
		return deny(NotFound, "missing registration type"), nil
	}

	accepted, err := c.accepted(ctx, req)
	if err != nil {
		return Decision{}, err
	}
	for _, t := range accepted {
		if t == requested {
			return allow(), nil
		}
	}
	return deny(Forbidden, "registration type not accepted"), nil
}

func (c *RegistrationTypeChecker) accepted(ctx context.Context, req *Request) ([]string, error) {
	status, err := req.Status(ctx, c.store)
	switch {
	case err == nil && len(status.RegistrationTypes) > 0:
		return status.RegistrationTypes, nil
	case err != nil && !pkgerrors.IsNotFound(err):
		return nil, err
	}
	if req.EventConfig != nil && len(req.EventConfig.RegistrationTypes) > 0 {
		return req.EventConfig.RegistrationTypes, nil
	}
	return c.defaults, nil
}
