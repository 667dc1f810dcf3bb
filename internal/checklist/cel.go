package checklist

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/thenoetrevino/propboard/internal/models"
)

// celCostLimit bounds the work a single admin-written expression may do
const celCostLimit = 10000

// CELEvaluator evaluates admin-defined system check expressions. Compiled
// programs are cached by expression text.
type CELEvaluator struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELEvaluator creates an evaluator exposing `proposal` (a map of proposal
// fields) and `now` (a timestamp) to expressions.
func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("proposal", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("now", cel.TimestampType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELEvaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile checks that expr is a valid boolean expression and caches it
func (e *CELEvaluator) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

func (e *CELEvaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.programs[expr]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.programs[expr]; hit {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	// map fields are dyn, so only reject expressions known not to be bool
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", out)
	}
	prg, err := e.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(celCostLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	e.programs[expr] = prg
	return prg, nil
}

// Eval runs expr against the proposal
func (e *CELEvaluator) Eval(expr string, p *models.Proposal, now time.Time) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]any{
		"proposal": proposalVars(p),
		"now":      now,
	})
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("result not bool")
	}
	return val, nil
}

// proposalVars flattens the proposal into the map seen by expressions.
// Unset optional values are reported through has_* flags.
func proposalVars(p *models.Proposal) map[string]any {
	vars := map[string]any{
		"id":                       string(p.ID),
		"name":                     p.Name,
		"solicitation_number":      p.SolicitationNumber,
		"agency":                   p.Agency,
		"contract_value":           0.0,
		"has_contract_value":       p.ContractValue != nil,
		"due_date":                 time.Time{},
		"has_due_date":             p.DueDate != nil,
		"status":                   p.Status,
		"current_phase":            p.CurrentPhase,
		"custom_workflow_stage_id": p.CustomWorkflowStageID,
	}
	if p.ContractValue != nil {
		vars["contract_value"] = *p.ContractValue
	}
	if p.DueDate != nil {
		vars["due_date"] = *p.DueDate
	}
	return vars
}
