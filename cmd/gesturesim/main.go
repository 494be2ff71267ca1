package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/synthpad/internal/gesturesim"
)

// Default configuration constants.
const (
	defaultSessions    = 200
	defaultMaxPointers = 5
	defaultMaxMoves    = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		sessions    = flag.Int("sessions", defaultSessions, "Number of independent sessions")
		maxPointers = flag.Int("pointers", defaultMaxPointers, "Maximum simultaneous pointers per session")
		maxMoves    = flag.Int("moves", defaultMaxMoves, "Maximum moves per pointer")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		surface     = flag.String("surface", gesturesim.SurfaceMixed, "radar, keyboard or mixed")
		timed       = flag.Bool("timed", false, "Drive windows with the engine's timer instead of explicit flushes")
		window      = flag.Duration("window", time.Millisecond, "Window for timed sessions")
		outputFile  = flag.String("output", "", "Write the generated scripts to this JSON file")
		logFile     = flag.String("log", "", "Log file (default: gesturesim_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Log every session result")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		gesturesim.ShowHelp()
		return
	}

	closeLog, err := gesturesim.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &gesturesim.Config{
		Sessions:    *sessions,
		MaxPointers: *maxPointers,
		MaxMoves:    *maxMoves,
		Workers:     *workers,
		Surface:     *surface,
		Timed:       *timed,
		Window:      *window,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := gesturesim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		_ = closeLog()
		cancel()
		os.Exit(1)
	}
}
