package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/adapters/http/api"
	"github.com/okian/synthpad/internal/adapters/midi"
	"github.com/okian/synthpad/internal/config"
	"github.com/okian/synthpad/pkg/logger"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	platform := capture.NewEbitenPlatform()
	r, err := newRig(ctx, cfg, platform)
	if err != nil {
		log.Error(ctx, "failed to build surfaces", logger.Error(err))
		return
	}

	if cfg.MIDIPort != "" {
		out, err := midi.Open(cfg.MIDIPort, midi.WithChannel(cfg.MIDIChannel))
		if err != nil {
			log.Warn(ctx, "midi disabled", logger.Error(err), logger.Any("ports", midi.Ports()))
		} else {
			r.attachMIDI(out, cfg)
		}
	}

	if err := r.start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}

	adminCtx, stopAdmin := context.WithCancel(ctx)
	adminDone := make(chan struct{})
	go func() {
		defer close(adminDone)
		if cfg.AdminAddr == "" {
			return
		}
		if err := api.Serve(adminCtx, cfg.AdminAddr, r.adminHandler()); err != nil {
			log.Error(ctx, "admin server failed", logger.Error(err))
		}
	}()

	ebiten.SetWindowTitle("synthpad")
	ebiten.SetWindowSize(screenWidth, screenHeight)
	if err := ebiten.RunGame(newGame(ctx, r, platform)); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error(ctx, "window closed with error", logger.Error(err))
	}

	log.Info(ctx, "shutting down")
	stopAdmin()
	<-adminDone
	r.close(context.Background())
	log.Info(ctx, "stopped")
}
