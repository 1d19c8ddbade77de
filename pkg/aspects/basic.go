package aspects

import "github.com/aretw0/tinyfsm/pkg/domain"

// OnEnter runs fn when the state is entered.
func OnEnter(fn func(machine domain.SetupView)) domain.SetupFunc {
	return func(machine domain.SetupView) domain.CleanupFunc {
		fn(machine)
		return nil
	}
}

// OnExit runs fn when the state is exited.
func OnExit(fn func(machine domain.CleanupView)) domain.SetupFunc {
	return func(domain.SetupView) domain.CleanupFunc {
		return fn
	}
}

// While runs enter when the state is entered and exit when it is left,
// e.g. to power a light or disable an input for the lifetime of the state.
func While(enter, exit func()) domain.SetupFunc {
	return func(domain.SetupView) domain.CleanupFunc {
		enter()
		return func(domain.CleanupView) { exit() }
	}
}

// TransitionOnEnter moves on to state as soon as the current state has been entered.
func TransitionOnEnter(state string) domain.SetupFunc {
	return func(machine domain.SetupView) domain.CleanupFunc {
		_ = machine.RequestTransition(state)
		return nil
	}
}

// TransitionOnCondition moves to success or fail depending on condition,
// evaluated once on entry.
func TransitionOnCondition(condition func() bool, success, fail string) domain.SetupFunc {
	return func(machine domain.SetupView) domain.CleanupFunc {
		target := fail
		if condition() {
			target = success
		}
		_ = machine.RequestTransition(target)
		return nil
	}
}
