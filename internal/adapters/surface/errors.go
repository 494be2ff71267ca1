package surface

import "errors"

var (
	// ErrInvalidConfig is returned when a surface is configured with
	// values it cannot lay out or map.
	ErrInvalidConfig = errors.New("invalid surface configuration")
)
