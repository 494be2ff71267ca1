package gesturesim

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
)

// verifyFrames checks one session's frames, including its teardown.
func verifyFrames(frames []trigger.Frame, velocity bool) error {
	c := trigger.NewChecker()
	c.CheckVelocity = velocity
	for _, f := range frames {
		if err := c.Observe(f); err != nil {
			return err
		}
	}
	return c.Finish()
}

// verifyResults folds session results into stats and reports failures.
func verifyResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	logger.Get().Info(ctx, "verifying sessions", logger.Int("sessions", len(results)))

	var failed []error
	for _, r := range results {
		stats.SessionsPlayed++
		stats.FramesRecorded += r.Frames
		stats.TriggersPressed += r.Pressed

		if r.Err != nil {
			stats.SessionsFailed++
			failed = append(failed, fmt.Errorf("session %s (%s): %w", r.SessionID, r.Surface, r.Err))
			logger.Get().Error(ctx, "session failed",
				logger.String("session", r.SessionID),
				logger.String("surface", r.Surface),
				logger.Error(r.Err))
			continue
		}
		if config.Verbose {
			logger.Get().Info(ctx, "session verified",
				logger.String("session", r.SessionID),
				logger.String("surface", r.Surface),
				logger.Int("frames", r.Frames),
				logger.Int("pressed", r.Pressed))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d sessions: %w", ErrViolations, len(failed), len(results), errors.Join(failed...))
	}
	logger.Get().Info(ctx, "all sessions verified")
	return nil
}
