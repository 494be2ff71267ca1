package capture

import "errors"

var (
	// ErrInvalidMode is returned for an unknown listener mode.
	ErrInvalidMode = errors.New("invalid capture mode")
)
