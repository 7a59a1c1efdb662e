package collision

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid collision config")
	// ErrAlreadyRegistered is returned when an actor is registered twice.
	ErrAlreadyRegistered = errors.New("actor already registered")
	// ErrNilActor is returned when registering a nil actor.
	ErrNilActor = errors.New("nil actor")
)
