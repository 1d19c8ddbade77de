package domain

import "fmt"

// SetupFunc is invoked once each time its state is entered.
// It may return a CleanupFunc to be invoked when the state is exited, or nil.
type SetupFunc func(machine SetupView) CleanupFunc

// CleanupFunc is invoked on state exit, or on termination when listed in Blueprint.OnEnd.
type CleanupFunc func(machine CleanupView)

// Blueprint is the static description of a state machine.
// A Blueprint must not be modified while a machine is running it.
type Blueprint struct {
	// InitState is the state entered when the blueprint starts running.
	InitState string

	// States maps each state name to the setup callbacks run, in order, on entry.
	States map[string][]SetupFunc

	// OnEnd holds the callbacks run, in order, when the machine terminates.
	OnEnd []CleanupFunc
}

// Validate checks the structural invariants of the blueprint.
func (b *Blueprint) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil blueprint", ErrInvalidBlueprint)
	}
	if _, reserved := b.States[StateEnd]; reserved {
		return fmt.Errorf("%w: %q is a reserved state name", ErrInvalidBlueprint, StateEnd)
	}
	if b.InitState == "" {
		return fmt.Errorf("%w: initial state is required", ErrInvalidBlueprint)
	}
	if !b.HasState(b.InitState) {
		return fmt.Errorf("%w: initial state %q is not declared", ErrInvalidBlueprint, b.InitState)
	}
	return nil
}

// HasState reports whether name is a state declared by the blueprint.
func (b *Blueprint) HasState(name string) bool {
	_, ok := b.States[name]
	return ok
}

// IsValidTarget reports whether name may be passed to RequestTransition.
func (b *Blueprint) IsValidTarget(name string) bool {
	return name == StateEnd || b.HasState(name)
}
