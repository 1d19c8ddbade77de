package domain

// DataAccessor gives access to the opaque payload a machine carries for its caller.
type DataAccessor interface {
	AuxData() any
	SetAuxData(data any)
}

// SetupView is the capability set handed to setup callbacks.
type SetupView interface {
	DataAccessor

	// RequestTransition asks the machine to move to state, or to terminate when
	// state is StateEnd. Requests made while a transition is in flight are
	// deferred until it completes; only the first such request is kept.
	RequestTransition(state string) error

	// Terminate ends the machine. It is a no-op on an idle machine.
	Terminate()
}

// CleanupView is the capability set handed to cleanup and termination callbacks.
// It offers no way to pick the machine's next state.
type CleanupView interface {
	DataAccessor

	// Terminate ends the machine. It is a no-op on an idle or terminating machine.
	Terminate()
}
