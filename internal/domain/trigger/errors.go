package trigger

import "errors"

// Invariant violations reported by Checker.
var (
	ErrDuplicateID    = errors.New("trigger id appears twice in one frame")
	ErrUnsorted       = errors.New("frame is not sorted by trigger id")
	ErrIDInUse        = errors.New("trigger pressed with an id that is still held")
	ErrNotPressed     = errors.New("trigger reported down or released without a press")
	ErrMissingTrigger = errors.New("held trigger missing from frame")
	ErrNotLowestID    = errors.New("new trigger did not take the lowest free id")
	ErrStillHeld      = errors.New("triggers still held after teardown")
	ErrUnknownState   = errors.New("unknown trigger state")
	ErrVelocityRange  = errors.New("velocity outside [0,1]")
)
