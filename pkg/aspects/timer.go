package aspects

import (
	"time"

	"github.com/aretw0/tinyfsm/pkg/domain"
)

// Scheduler runs fn after a delay on the goroutine that owns the machines.
// *loop.Loop satisfies it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func())
}

// TransitionAfter moves to state once delay has elapsed, unless the state is
// left first.
func TransitionAfter(s Scheduler, delay time.Duration, state string) domain.SetupFunc {
	return func(machine domain.SetupView) domain.CleanupFunc {
		stop := s.AfterFunc(delay, func() {
			_ = machine.RequestTransition(state)
		})
		return func(domain.CleanupView) { stop() }
	}
}
