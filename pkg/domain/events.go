package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter       EventType = "state_enter"
	EventStateExit        EventType = "state_exit"
	EventMachineTerminate EventType = "machine_terminate"
	EventMachineCreate    EventType = "machine_create"
	EventMachineDestroy   EventType = "machine_destroy"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	MachineID int       `json:"machine_id"`
}

// StateEvent represents entry into or exit from a state.
type StateEvent struct {
	EventBase
	State string `json:"state"`
}

// MachineEvent represents a change in a machine's lifecycle.
type MachineEvent struct {
	EventBase
	// State is the state the machine was in, if any.
	State string `json:"state,omitempty"`
}

// NewStateEvent builds a StateEvent stamped with the current time.
func NewStateEvent(t EventType, machineID int, state string) *StateEvent {
	return &StateEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: t, MachineID: machineID},
		State:     state,
	}
}

// NewMachineEvent builds a MachineEvent stamped with the current time.
func NewMachineEvent(t EventType, machineID int, state string) *MachineEvent {
	return &MachineEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: t, MachineID: machineID},
		State:     state,
	}
}

// LifecycleHooks defines callbacks for machine and manager observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnStateEnter       func(*StateEvent)
	OnStateExit        func(*StateEvent)
	OnMachineTerminate func(*MachineEvent)
	OnMachineCreate    func(*MachineEvent)
	OnMachineDestroy   func(*MachineEvent)
}

// MergeHooks combines several hook sets into one that calls each in argument order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		merged.OnStateEnter = chain(merged.OnStateEnter, h.OnStateEnter)
		merged.OnStateExit = chain(merged.OnStateExit, h.OnStateExit)
		merged.OnMachineTerminate = chain(merged.OnMachineTerminate, h.OnMachineTerminate)
		merged.OnMachineCreate = chain(merged.OnMachineCreate, h.OnMachineCreate)
		merged.OnMachineDestroy = chain(merged.OnMachineDestroy, h.OnMachineDestroy)
	}
	return merged
}

func chain[E any](first, second func(E)) func(E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(e E) {
		first(e)
		second(e)
	}
}
