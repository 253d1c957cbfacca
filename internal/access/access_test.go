package access

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/config"
	"rng/internal/constants"
	"rng/internal/eventtype"
	"rng/internal/logger"
	"rng/internal/registration"
	"rng/internal/routing"
	pkgerrors "rng/pkg/errors"
)

func conferenceRoutes(t *testing.T) map[string]routing.RouteDescriptor {
	t.Helper()
	routes := routing.NewDeriver("rng").RoutesFor("conference", "/conference/{conference}")
	byName := make(map[string]routing.RouteDescriptor, len(routes))
	for _, r := range routes {
		byName[r.Name] = r
	}
	return byName
}

func newPolicy(t *testing.T, store registration.Store) *Policy {
	t.Helper()
	policy, err := NewRoutePolicy(config.AccessConfig{
		PermissionHeader:               constants.DefaultPermissionHeader,
		RegistrationsAllowedExpression: constants.DefaultRegistrationsAllowedExpression,
		RegistrationTypes:              []string{"default"},
	}, store, logger.NopLogger())
	require.NoError(t, err)
	return policy
}

func request(route routing.RouteDescriptor, params map[string]string, permissions ...string) *Request {
	header := http.Header{}
	for _, p := range permissions {
		header.Add(constants.DefaultPermissionHeader, p)
	}
	return &Request{
		Route:       route,
		Params:      params,
		Header:      header,
		EventConfig: &eventtype.Config{EntityType: "conference", Enabled: true},
	}
}

func TestPolicyManageRoutes(t *testing.T) {
	routes := conferenceRoutes(t)
	policy := newPolicy(t, registration.NewMemoryStore())
	ctx := context.Background()
	route := routes["rng.event.conference.event.rules"]
	params := map[string]string{"conference": "7"}

	tests := []struct {
		name        string
		permissions []string
		want        Result
	}{
		{"administer", []string{"administer rng"}, Allowed},
		{"manage type", []string{"access content, manage conference event"}, Allowed},
		{"other type", []string{"manage class event"}, Forbidden},
		{"none", nil, Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := policy.Evaluate(ctx, request(route, params, tt.permissions...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Result)
			if tt.want != Allowed {
				assert.Equal(t, routing.FlagEventManage, decision.Flag)
				assert.Equal(t, http.StatusForbidden, decision.HTTPStatus())
			}
		})
	}
}

func TestEventCheckerDeniesUnknownEvents(t *testing.T) {
	routes := conferenceRoutes(t)
	policy := newPolicy(t, registration.NewMemoryStore())
	ctx := context.Background()
	route := routes["rng.event.conference.event"]

	req := request(route, map[string]string{"conference": "7"}, "administer rng")
	req.EventConfig = nil
	decision, err := policy.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, NotFound, decision.Result)
	assert.Equal(t, routing.FlagEvent, decision.Flag)

	req = request(route, map[string]string{"conference": "7"}, "administer rng")
	req.EventConfig.Enabled = false
	decision, _ = policy.Evaluate(ctx, req)
	assert.Equal(t, NotFound, decision.Result)

	decision, _ = policy.Evaluate(ctx, request(route, map[string]string{}, "administer rng"))
	assert.Equal(t, NotFound, decision.Result)
}

func TestRegistrationsAllowed(t *testing.T) {
	routes := conferenceRoutes(t)
	store := registration.NewMemoryStore()
	policy := newPolicy(t, store)
	ctx := context.Background()
	route := routes["rng.event.conference.register.type_list"]
	now := time.Now().Unix()

	put := func(id string, status registration.EventStatus) {
		status.EventType = "conference"
		status.EventID = id
		require.NoError(t, store.Put(ctx, &status))
	}
	put("open", registration.EventStatus{Status: registration.StatusOpen})
	put("closed", registration.EventStatus{Status: registration.StatusClosed})
	put("future", registration.EventStatus{Status: registration.StatusOpen, OpensAt: now + 3600})
	put("past", registration.EventStatus{Status: registration.StatusOpen, ClosesAt: now - 3600})
	put("full", registration.EventStatus{Status: registration.StatusOpen, Capacity: 2, Registered: 2})
	put("window", registration.EventStatus{Status: registration.StatusOpen, OpensAt: now - 60, ClosesAt: now + 60, Capacity: 2, Registered: 1})

	tests := []struct {
		id   string
		want Result
	}{
		{"open", Allowed},
		{"window", Allowed},
		{"closed", Forbidden},
		{"future", Forbidden},
		{"past", Forbidden},
		{"full", Forbidden},
		{"unknown", Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			decision, err := policy.Evaluate(ctx, request(route, map[string]string{"conference": tt.id}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Result)
		})
	}
}

func TestRegistrationTypeFallbacks(t *testing.T) {
	routes := conferenceRoutes(t)
	store := registration.NewMemoryStore()
	policy := newPolicy(t, store)
	ctx := context.Background()
	route := routes["rng.event.conference.register"]

	require.NoError(t, store.Put(ctx, &registration.EventStatus{
		EventType: "conference", EventID: "1", Status: registration.StatusOpen,
		RegistrationTypes: []string{"speaker"},
	}))
	require.NoError(t, store.Put(ctx, &registration.EventStatus{
		EventType: "conference", EventID: "2", Status: registration.StatusOpen,
	}))

	tests := []struct {
		name        string
		id          string
		regType     string
		configTypes []string
		want        Result
	}{
		{"status list accepts", "1", "speaker", []string{"attendee"}, Allowed},
		{"status list rejects", "1", "attendee", []string{"attendee"}, Forbidden},
		{"config list accepts", "2", "attendee", []string{"attendee"}, Allowed},
		{"config list rejects", "2", "default", []string{"attendee"}, Forbidden},
		{"global default", "2", "default", nil, Allowed},
		{"missing type", "2", "", nil, NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(route, map[string]string{"conference": tt.id, routing.ParamRegistrationType: tt.regType})
			req.EventConfig.RegistrationTypes = tt.configTypes
			decision, err := policy.Evaluate(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Result)
			if tt.want != Allowed {
				assert.Equal(t, routing.FlagEventRegistrationType, decision.Flag)
			}
		})
	}
}

type countingStore struct {
	registration.Store
	gets int
	err  error
}

func (s *countingStore) Get(ctx context.Context, eventType, eventID string) (*registration.EventStatus, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	return s.Store.Get(ctx, eventType, eventID)
}

func TestStatusLoadedOnce(t *testing.T) {
	inner := registration.NewMemoryStore()
	require.NoError(t, inner.Put(context.Background(), &registration.EventStatus{
		EventType: "conference", EventID: "1", Status: registration.StatusOpen,
	}))
	store := &countingStore{Store: inner}
	policy := newPolicy(t, store)

	route := conferenceRoutes(t)["rng.event.conference.register"]
	decision, err := policy.Evaluate(context.Background(), request(route, map[string]string{"conference": "1", "registration_type": "default"}))
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
	assert.Equal(t, 1, store.gets)
}

func TestStoreErrorsFailClosed(t *testing.T) {
	store := &countingStore{Store: registration.NewMemoryStore(), err: pkgerrors.ErrServiceUnavailable.WithCause(errors.New("redis down"))}
	policy := newPolicy(t, store)

	route := conferenceRoutes(t)["rng.event.conference.register.type_list"]
	decision, err := policy.Evaluate(context.Background(), request(route, map[string]string{"conference": "1"}))
	require.Error(t, err)
	assert.False(t, decision.Allowed())
	assert.Equal(t, routing.FlagRegistrationsAllowed, decision.Flag)
}

func TestPolicyDeniesUnknownFlags(t *testing.T) {
	policy := NewPolicy(logger.NopLogger(), EventChecker{})
	route := routing.RouteDescriptor{
		Name:         "custom",
		Defaults:     map[string]string{routing.DefaultEvent: "conference"},
		Requirements: map[string]string{routing.FlagEvent: routing.FlagEnabled, "_custom": routing.FlagEnabled, "_off": "FALSE"},
	}

	decision, err := policy.Evaluate(context.Background(), request(route, map[string]string{"conference": "1"}))
	require.NoError(t, err)
	assert.Equal(t, Forbidden, decision.Result)
	assert.Equal(t, "_custom", decision.Flag)
}

func TestRoutePolicyRejectsBadExpression(t *testing.T) {
	_, err := NewRoutePolicy(config.AccessConfig{RegistrationsAllowedExpression: "status +"}, registration.NewMemoryStore(), logger.NopLogger())
	assert.Error(t, err)

	_, err = NewRoutePolicy(config.AccessConfig{RegistrationsAllowedExpression: "capacity"}, registration.NewMemoryStore(), logger.NopLogger())
	assert.Error(t, err)
}
