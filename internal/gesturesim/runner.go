// Package gesturesim replays random multi-pointer gestures through the
// whole input pipeline and checks the trigger frames it produces.
package gesturesim

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/synthpad/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

func validate(config *Config) error {
	switch {
	case config.Sessions < 1:
		return fmt.Errorf("%w: sessions must be positive", ErrInvalidConfig)
	case config.MaxPointers < 1:
		return fmt.Errorf("%w: max pointers must be positive", ErrInvalidConfig)
	case config.MaxMoves < 0:
		return fmt.Errorf("%w: max moves must not be negative", ErrInvalidConfig)
	}
	switch config.Surface {
	case SurfaceRadar, SurfaceKeyboard, SurfaceMixed:
	default:
		return fmt.Errorf("%w: unknown surface %q", ErrInvalidConfig, config.Surface)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return nil
}

// Run executes a complete simulation.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := validate(config); err != nil {
		return nil, err
	}
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting gesture simulation",
		logger.Int("sessions", config.Sessions),
		logger.Int("maxPointers", config.MaxPointers),
		logger.Int("maxMoves", config.MaxMoves),
		logger.Int("workers", config.Workers),
		logger.String("surface", config.Surface),
		logger.Bool("timed", config.Timed))

	scripts, err := generateScripts(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("script generation failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveScriptsToFile(ctx, config.OutputFile, scripts); err != nil {
			logger.Get().Warn(ctx, "failed to save scripts to file", logger.Error(err))
		}
	}

	results, err := replayScripts(ctx, config, scripts, stats)
	if err != nil {
		return stats, fmt.Errorf("replay failed: %w", err)
	}

	verifyErr := verifyResults(ctx, config, results, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	logger.Get().Info(ctx, "simulation completed successfully")
	return stats, nil
}

// replayScripts replays every script on a pool of workers. Each session
// owns its own pipeline.
func replayScripts(ctx context.Context, config *Config, scripts []Script, stats *Stats) ([]Result, error) {
	jobs := make(chan int, len(scripts))
	for i := range scripts {
		jobs <- i
	}
	close(jobs)

	results := make([]Result, len(scripts))
	var wg sync.WaitGroup
	for w := 0; w < minInt(config.Workers, len(scripts)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				results[i] = replay(ctx, config, scripts[i])
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled during replay: %w", err)
	}
	for _, s := range scripts {
		stats.StepsInjected += len(s.Steps)
	}
	return results, nil
}

// saveScriptsToFile writes the generated scripts as a JSON array.
func saveScriptsToFile(ctx context.Context, filename string, scripts []Script) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scripts); err != nil {
		return fmt.Errorf("failed to encode scripts: %w", err)
	}

	logger.Get().Info(ctx, "scripts saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var stepsPerSecond float64
	if stats.Duration > 0 {
		stepsPerSecond = float64(stats.StepsInjected) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessionsGenerated", stats.SessionsGenerated),
		logger.Int("sessionsPlayed", stats.SessionsPlayed),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("stepsInjected", stats.StepsInjected),
		logger.Int("framesRecorded", stats.FramesRecorded),
		logger.Int("triggersPressed", stats.TriggersPressed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("stepsPerSecond", stepsPerSecond))
}
