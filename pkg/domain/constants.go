package domain

const (
	// StateEnd is the reserved transition target that terminates a machine.
	// It may not be used as a state name in a blueprint.
	StateEnd = "end"

	// NoID marks a machine that is not bound to a manager-issued identifier.
	NoID = -1
)
