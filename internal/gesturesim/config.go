package gesturesim

import (
	"time"

	"github.com/okian/synthpad/internal/adapters/capture"
)

// Surfaces a session can be played on.
const (
	SurfaceRadar    = "radar"
	SurfaceKeyboard = "keyboard"
	SurfaceMixed    = "mixed"
)

// Config holds configuration for a simulation run.
type Config struct {
	Sessions    int           // Number of independent sessions
	MaxPointers int           // Upper bound of simultaneous pointers per session
	MaxMoves    int           // Upper bound of moves per pointer
	Workers     int           // Number of concurrent workers
	Surface     string        // radar, keyboard or mixed
	Timed       bool          // Run the engine's window loop instead of explicit flushes
	Window      time.Duration // Window for timed sessions
	OutputFile  string        // Optional JSON file for the generated scripts
	Verbose     bool          // Log every session result
}

// Step is one injected native event. Flush ends a window after the step.
type Step struct {
	Kind    capture.NativeKind `json:"kind"`
	X       float64            `json:"x,omitempty"`
	Y       float64            `json:"y,omitempty"`
	Touches []capture.Touch    `json:"touches,omitempty"`
	Flush   bool               `json:"flush,omitempty"`
}

// Script is the gesture sequence of one session.
type Script struct {
	SessionID string `json:"session_id"`
	Surface   string `json:"surface"`
	Steps     []Step `json:"steps"`
}

// Result is the outcome of replaying one script.
type Result struct {
	SessionID string
	Surface   string
	Frames    int
	Pressed   int
	Err       error
}

// Stats holds run statistics.
type Stats struct {
	SessionsGenerated int
	SessionsPlayed    int
	SessionsFailed    int
	StepsInjected     int
	FramesRecorded    int
	TriggersPressed   int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
