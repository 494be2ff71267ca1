package gesturesim

import "errors"

// Sentinel errors for simulation runs.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrViolations    = errors.New("trigger invariant violations")
)
