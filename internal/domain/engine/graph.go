package engine

import (
	"errors"
	"fmt"
	"sort"
)

// Errors for StepGraph operations.
var (
	ErrDuplicateStep    = errors.New("step with this ID already exists")
	ErrCyclicDependency = errors.New("cyclic dependency detected")
	ErrMissingDep       = errors.New("step depends on nonexistent step")
	ErrUnknownStep      = errors.New("unknown step id")
)

// StepGraph is the directed acyclic graph of steps for one run. It tracks
// dependencies and provides topological sorting for execution order.
type StepGraph struct {
	steps      map[string]Step
	dependsOn  map[string][]string // step ID -> dependency IDs
	dependedBy map[string][]string // step ID -> dependent IDs
}

// NewStepGraph creates an empty StepGraph.
func NewStepGraph() *StepGraph {
	return &StepGraph{
		steps:      make(map[string]Step),
		dependsOn:  make(map[string][]string),
		dependedBy: make(map[string][]string),
	}
}

// Len returns the number of steps in the graph.
func (g *StepGraph) Len() int {
	return len(g.steps)
}

// Add adds a step to the graph.
// Returns ErrDuplicateStep if a step with the same ID already exists.
func (g *StepGraph) Add(step Step) error {
	id := step.ID().String()

	if _, exists := g.steps[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStep, id)
	}

	g.steps[id] = step

	deps := step.DependsOn()
	depIDs := make([]string, len(deps))
	for i, dep := range deps {
		depID := dep.String()
		depIDs[i] = depID
		g.dependedBy[depID] = append(g.dependedBy[depID], id)
	}
	g.dependsOn[id] = depIDs

	return nil
}

// Get retrieves a step by ID.
func (g *StepGraph) Get(id StepID) (Step, bool) {
	step, ok := g.steps[id.String()]
	return step, ok
}

// Steps returns all steps in the graph (in no particular order).
func (g *StepGraph) Steps() []Step {
	steps := make([]Step, 0, len(g.steps))
	for _, step := range g.steps {
		steps = append(steps, step)
	}
	return steps
}

// Validate checks that all dependencies exist.
func (g *StepGraph) Validate() error {
	for id, deps := range g.dependsOn {
		for _, depID := range deps {
			if _, exists := g.steps[depID]; !exists {
				return fmt.Errorf("%w: step %q depends on %q", ErrMissingDep, id, depID)
			}
		}
	}
	return nil
}

// Restrict returns a new graph containing only the steps named in ids plus
// their transitive dependency closure. Returns ErrUnknownStep for an id
// that is not in the graph.
func (g *StepGraph) Restrict(ids []string) (*StepGraph, error) {
	keep := make(map[string]bool)
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, exists := g.steps[id]; !exists {
			return nil, fmt.Errorf("%w: %q in --only", ErrUnknownStep, id)
		}
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if keep[id] {
			continue
		}
		keep[id] = true
		queue = append(queue, g.dependsOn[id]...)
	}

	return g.subgraph(keep)
}

// Without returns a new graph with the named steps removed. Dependents of
// a removed step keep running; their edge to it is dropped, on the
// operator's assertion that its effect is already in place. Returns
// ErrUnknownStep for an id that is not in the graph.
func (g *StepGraph) Without(ids []string) (*StepGraph, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, exists := g.steps[id]; !exists {
			return nil, fmt.Errorf("%w: %q in --skip", ErrUnknownStep, id)
		}
		drop[id] = true
	}

	keep := make(map[string]bool, len(g.steps))
	for id := range g.steps {
		if !drop[id] {
			keep[id] = true
		}
	}

	return g.subgraph(keep)
}

// subgraph builds a new graph from the kept step ids, pruning edges that
// point outside the kept set.
func (g *StepGraph) subgraph(keep map[string]bool) (*StepGraph, error) {
	sub := NewStepGraph()
	for id := range keep {
		sub.steps[id] = g.steps[id]
		deps := make([]string, 0, len(g.dependsOn[id]))
		for _, depID := range g.dependsOn[id] {
			if keep[depID] {
				deps = append(deps, depID)
				sub.dependedBy[depID] = append(sub.dependedBy[depID], id)
			}
		}
		sub.dependsOn[id] = deps
	}
	return sub, nil
}

// TopologicalSort returns steps in dependency order using Kahn's algorithm.
// Steps with no dependencies come first; ties break lexicographically so
// plans are stable across runs. Returns ErrCyclicDependency if the graph
// contains a cycle.
func (g *StepGraph) TopologicalSort() ([]Step, error) {
	inDegree := make(map[string]int)
	for id := range g.steps {
		inDegree[id] = 0
	}
	for id := range g.steps {
		for _, depID := range g.dependsOn[id] {
			if _, exists := g.steps[depID]; exists {
				inDegree[id]++
			}
		}
	}

	queue := make([]string, 0)
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	sorted := make([]Step, 0, len(g.steps))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		sorted = append(sorted, g.steps[id])

		ready := make([]string, 0)
		for _, dependentID := range g.dependedBy[id] {
			if _, exists := g.steps[dependentID]; !exists {
				continue
			}
			inDegree[dependentID]--
			if inDegree[dependentID] == 0 {
				ready = append(ready, dependentID)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(sorted) != len(g.steps) {
		return nil, ErrCyclicDependency
	}

	return sorted, nil
}
