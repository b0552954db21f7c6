package execution

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

// Planner generates a Plan from a StepGraph by probing each step's current
// status. Probes are side-effect-free, so planning never changes the
// machine.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan probes each step and returns entries in topological order.
// A probe error is not fatal: the step is planned as unknown and the
// executor will attempt the action and re-check.
func (p *Planner) Plan(ctx context.Context, graph *engine.StepGraph) (*Plan, error) {
	plan := NewPlan()

	steps, err := graph.TopologicalSort()
	if err != nil {
		return nil, engine.NewConfigError("failed to order steps", err)
	}

	runCtx := engine.NewRunContext(ctx)

	for _, step := range steps {
		entry, err := p.planStep(step, runCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to plan step %q: %w", step.ID().String(), err)
		}
		plan.Add(entry)
	}

	return plan, nil
}

// planStep probes a single step and generates a PlanEntry.
func (p *Planner) planStep(step engine.Step, ctx engine.RunContext) (PlanEntry, error) {
	status, err := step.Check(ctx)
	if err != nil {
		// The probe itself could not determine state; defer to execution.
		status = engine.StatusUnknown
	}

	var diff engine.Diff
	if status == engine.StatusNeedsApply || status == engine.StatusUnknown {
		d, err := step.Plan(ctx)
		if err != nil {
			return PlanEntry{}, fmt.Errorf("plan failed: %w", err)
		}
		diff = d
	}

	return NewPlanEntry(step, status, diff), nil
}
