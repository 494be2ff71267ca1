package midi

import "errors"

var (
	// ErrNoPort is returned when no output port matches.
	ErrNoPort = errors.New("no midi output port")
)
