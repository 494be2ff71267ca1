// Command termpad plays the synthpad keyboard with the mouse in a terminal.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/adapters/surface"
	app "github.com/okian/synthpad/internal/app"
	"github.com/okian/synthpad/internal/config"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/pkg/logger"
)

const engineName = "keyboard"

func main() {
	// The terminal belongs to bubbletea; logs go to a file when asked for.
	out := io.Discard
	if path := os.Getenv("SYNTHPAD_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			return
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	if err := logger.InitWithWriter(out); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	platform, kb, svc, err := build(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to build keyboard: " + err.Error() + "\n")
		return
	}
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(context.Background())

	p := tea.NewProgram(newModel(ctx, platform, kb, svc.Engine(engineName)),
		tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		os.Stderr.WriteString("termpad: " + err.Error() + "\n")
	}
}

// build wires a keyboard to its engine and to the terminal platform.
func build(ctx context.Context, cfg *config.Config) (*capture.TeaPlatform, *surface.Keyboard, *app.Service, error) {
	svc := app.New(
		app.WithServiceWindow(cfg.Window()),
		app.WithServiceQueueSize(cfg.QueueSize),
	)
	engine, err := svc.NewEngine(engineName)
	if err != nil {
		return nil, nil, nil, err
	}

	// Real bounds arrive with the first WindowSizeMsg.
	kb, err := surface.NewKeyboard(engineName, engine, geometry.Rect{Width: 1, Height: 1},
		surface.WithOctaves(cfg.KeyboardOctaves),
		surface.WithStartOctave(cfg.KeyboardStartOctave),
		surface.WithResetter(engine),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := svc.SetResetter(engineName, kb); err != nil {
		return nil, nil, nil, err
	}

	platform := capture.NewTeaPlatform()
	hub := capture.NewHub(platform)
	l := hub.Listen(ctx, kb, capture.ModeMouse)
	surface.Attach(ctx, l, kb)
	return platform, kb, svc, nil
}
