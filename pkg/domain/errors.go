package domain

import "errors"

// ErrAlreadyRunning is returned when a blueprint is run on a machine that already has one bound.
var ErrAlreadyRunning = errors.New("machine is already running a blueprint")

// ErrNotRunning is returned when a transition is requested on an idle machine.
var ErrNotRunning = errors.New("machine is not running a blueprint")

// ErrUnknownState is returned when a transition targets a state the blueprint does not declare.
var ErrUnknownState = errors.New("unknown state")

// ErrInvalidBlueprint is returned when a blueprint fails validation.
var ErrInvalidBlueprint = errors.New("invalid blueprint")

// ErrPoolExhausted is returned by a manager when its identifier pool has no free identifiers.
var ErrPoolExhausted = errors.New("identifier pool exhausted")

// ErrUnknownID is returned when an identifier is not bound to a machine.
var ErrUnknownID = errors.New("unknown machine id")

// ErrInvalidCapacity is returned when a pool or manager is configured with a negative size.
var ErrInvalidCapacity = errors.New("capacity must be a non-negative integer")
