package gesturesim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/synthpad/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging logs to both the console and a file. If logFile is empty,
// a timestamped filename is generated. The returned function closes the
// file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "gesturesim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`synthpad gesture simulator
==========================

Replays random multi-touch and mouse gestures through capture, surfaces and
the trigger engine, then checks every recorded frame.

Usage:
  gesturesim [options]

Options:
  -sessions int
        Number of independent sessions (default 200)
  -pointers int
        Maximum simultaneous pointers per session (default 5)
  -moves int
        Maximum moves per pointer (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -surface string
        radar, keyboard or mixed (default "mixed")
  -timed
        Drive windows with the engine's timer instead of explicit flushes
  -window duration
        Window for timed sessions (default 1ms)
  -output string
        Write the generated scripts to this JSON file
  -log string
        Log file (default: gesturesim_TIMESTAMP.log)
  -verbose
        Log every session result
  -help
        Show this help message

Examples:
  gesturesim -sessions 1000 -surface keyboard
  gesturesim -timed -window 2ms -output scripts.json
`)
}
