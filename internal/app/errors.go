package app

import "errors"

// Sentinel errors for the service.
var (
	ErrStopped        = errors.New("service stopped")
	ErrAlreadyStarted = errors.New("service already started")
	ErrAlreadyExists  = errors.New("engine already registered")
	ErrUnknownEngine  = errors.New("engine not found")
)
