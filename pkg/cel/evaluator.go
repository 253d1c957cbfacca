package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Variables exposed to registration expressions.
const (
	VarStatus            = "status"
	VarOpensAt           = "opens_at"
	VarClosesAt          = "closes_at"
	VarCapacity          = "capacity"
	VarRegistered        = "registered"
	VarNow               = "now"
	VarEventType         = "event_type"
	VarRegistrationTypes = "registration_types"
)

// Vars is the activation of a registration expression. Timestamps are unix
// seconds.
type Vars struct {
	Status            string
	OpensAt           int64
	ClosesAt          int64
	Capacity          int64
	Registered        int64
	Now               int64
	EventType         string
	RegistrationTypes []string
}

func (v Vars) activation() map[string]interface{} {
	types := v.RegistrationTypes
	if types == nil {
		types = []string{}
	}
	return map[string]interface{}{
		VarStatus:            v.Status,
		VarOpensAt:           v.OpensAt,
		VarClosesAt:          v.ClosesAt,
		VarCapacity:          v.Capacity,
		VarRegistered:        v.Registered,
		VarNow:               v.Now,
		VarEventType:         v.EventType,
		VarRegistrationTypes: types,
	}
}

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarStatus, cel.StringType),
		cel.Variable(VarOpensAt, cel.IntType),
		cel.Variable(VarClosesAt, cel.IntType),
		cel.Variable(VarCapacity, cel.IntType),
		cel.Variable(VarRegistered, cel.IntType),
		cel.Variable(VarNow, cel.IntType),
		cel.Variable(VarEventType, cel.StringType),
		cel.Variable(VarRegistrationTypes, cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateExpression(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Evaluator) compile(expression string) (*cel.Ast, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %v", ast.OutputType())
	}

	return ast, nil
}

// Program is a compiled boolean expression, safe for concurrent use.
type Program struct {
	expression string
	program    cel.Program
}

func (e *Evaluator) Compile(expression string) (*Program, error) {
	ast, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Program{expression: expression, program: program}, nil
}

func (p *Program) Expression() string {
	return p.expression
}

func (p *Program) Eval(ctx context.Context, vars Vars) (bool, error) {
	result, _, err := p.program.ContextEval(ctx, vars.activation())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

// Evaluate compiles and runs expression once.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, vars Vars) (bool, error) {
	program, err := e.Compile(expression)
	if err != nil {
		return false, err
	}
	return program.Eval(ctx, vars)
}
