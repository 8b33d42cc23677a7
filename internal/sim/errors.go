package sim

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running simulation.
	ErrAlreadyRunning = errors.New("sim: simulation already running")

	// ErrInvalidConfig indicates a configuration the tick loop cannot use.
	ErrInvalidConfig = errors.New("sim: invalid configuration")
)
