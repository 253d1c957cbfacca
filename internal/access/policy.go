package access

import (
	"context"
	"fmt"

	"rng/internal/config"
	"rng/internal/logger"
	"rng/internal/registration"
	"rng/pkg/cel"
	"rng/pkg/metrics"
)

// Policy evaluates every enabled requirement of a route in lexical order and
// stops at the first denial. Flags without a checker deny.
type Policy struct {
	checkers map[string]Checker
	logger   logger.Logger
}

func NewPolicy(log logger.Logger, checkers ...Checker) *Policy {
	p := &Policy{checkers: make(map[string]Checker, len(checkers)), logger: log}
	for _, c := range checkers {
		p.checkers[c.Flag()] = c
	}
	return p
}

func (p *Policy) Evaluate(ctx context.Context, req *Request) (Decision, error) {
	for _, flag := range req.Route.Flags() {
		checker, ok := p.checkers[flag]
		if !ok {
			metrics.IncAccessDecision(flag, string(Forbidden))
			p.logger.WarnwCtx(ctx, "No checker for access flag", "flag", flag, "route", req.Route.Name)
			return Decision{Result: Forbidden, Flag: flag, Reason: "unsupported requirement"}, nil
		}

		decision, err := checker.Check(ctx, req)
		if err != nil {
			metrics.IncAccessDecision(flag, "error")
			return Decision{Result: Forbidden, Flag: flag}, err
		}
		metrics.IncAccessDecision(flag, string(decision.Result))
		if !decision.Allowed() {
			decision.Flag = flag
			return decision, nil
		}
	}
	return allow(), nil
}

// NewRoutePolicy wires the checkers of every flag the deriver emits.
func NewRoutePolicy(cfg config.AccessConfig, store registration.Store, log logger.Logger) (*Policy, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL evaluator: %w", err)
	}
	program, err := evaluator.Compile(cfg.RegistrationsAllowedExpression)
	if err != nil {
		return nil, fmt.Errorf("invalid registrations allowed expression: %w", err)
	}

	return NewPolicy(log,
		EventChecker{},
		NewManageChecker(cfg.PermissionHeader),
		NewRegistrationsAllowedChecker(store, program),
		NewRegistrationTypeChecker(store, cfg.RegistrationTypes),
	), nil
}
