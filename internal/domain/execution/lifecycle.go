package execution

import (
	"github.com/felixgeelhaar/statekit"
)

// Per-step lifecycle states. Every step walks
// pending → probing → {satisfied | applying → {applied | failed}};
// skipped is reachable any time before the action starts.
const (
	statePending   = "pending"
	stateProbing   = "probing"
	stateApplying  = "applying"
	stateSatisfied = "satisfied"
	stateApplied   = "applied"
	stateFailed    = "failed"
	stateSkipped   = "skipped"
)

// Lifecycle events.
const (
	eventProbe       = "PROBE"
	eventSatisfied   = "SATISFIED"
	eventUnsatisfied = "UNSATISFIED"
	eventApplied     = "APPLIED"
	eventFail        = "FAIL"
	eventSkip        = "SKIP"
)

type lifecycleContext struct{}

// stepLifecycle wraps a statekit machine that enforces the legal per-step
// transitions. Illegal events (e.g. APPLIED while probing) are ignored by
// the machine, so a bug in the executor cannot fabricate an outcome.
type stepLifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

// newStepLifecycle builds and starts a fresh lifecycle machine.
func newStepLifecycle() (*stepLifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("rig-step").
		WithInitial(statePending).
		WithContext(lifecycleContext{}).
		State(statePending).
		On(eventProbe).Target(stateProbing).
		On(eventSkip).Target(stateSkipped).Done().
		State(stateProbing).
		On(eventSatisfied).Target(stateSatisfied).
		On(eventUnsatisfied).Target(stateApplying).
		On(eventFail).Target(stateFailed).
		On(eventSkip).Target(stateSkipped).Done().
		State(stateApplying).
		On(eventApplied).Target(stateApplied).
		On(eventFail).Target(stateFailed).Done().
		State(stateSatisfied).Done().
		State(stateApplied).Done().
		State(stateFailed).Done().
		State(stateSkipped).Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &stepLifecycle{interp: interp}, nil
}

// send feeds an event into the machine.
func (l *stepLifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

// state returns the machine's current state value.
func (l *stepLifecycle) state() string {
	return string(l.interp.State().Value)
}

// stop halts the interpreter.
func (l *stepLifecycle) stop() {
	l.interp.Stop()
}
