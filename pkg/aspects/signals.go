package aspects

import "github.com/aretw0/tinyfsm/pkg/domain"

type subscription struct {
	fn     func()
	active bool
}

// Signals is a named-event bus for external triggers such as button presses
// or API calls. It is not safe for concurrent use.
type Signals struct {
	subs map[string][]*subscription
}

// NewSignals creates an empty bus.
func NewSignals() *Signals {
	return &Signals{subs: make(map[string][]*subscription)}
}

// On registers fn for signal and returns a function that unregisters it.
func (s *Signals) On(signal string, fn func()) (off func()) {
	sub := &subscription{fn: fn, active: true}
	s.subs[signal] = append(s.subs[signal], sub)

	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		list := s.subs[signal]
		for i, candidate := range list {
			if candidate == sub {
				s.subs[signal] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(s.subs[signal]) == 0 {
			delete(s.subs, signal)
		}
	}
}

// Emit calls every handler registered for signal, in registration order, and
// reports how many ran. Handlers registered during Emit wait for the next
// emission; handlers removed during Emit are skipped.
func (s *Signals) Emit(signal string) int {
	snapshot := append([]*subscription(nil), s.subs[signal]...)
	n := 0
	for _, sub := range snapshot {
		if !sub.active {
			continue
		}
		sub.fn()
		n++
	}
	return n
}

// Listeners returns the number of handlers registered for signal.
func (s *Signals) Listeners(signal string) int {
	return len(s.subs[signal])
}

// TransitionOnSignal moves to state when signal is emitted while the state is active.
func TransitionOnSignal(bus *Signals, signal, state string) domain.SetupFunc {
	return func(machine domain.SetupView) domain.CleanupFunc {
		off := bus.On(signal, func() {
			_ = machine.RequestTransition(state)
		})
		return func(domain.CleanupView) { off() }
	}
}
