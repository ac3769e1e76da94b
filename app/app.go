package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"whispr/config"
	"whispr/core"
	"whispr/ui"
)

// Application holds all wired dependencies and manages the application lifecycle.
type Application struct {
	Config   config.Config
	Session  *core.Session
	Scaffold *ui.Scaffold
	Program  *tea.Program
	Logger   *zap.Logger
}

// Run starts the application and blocks until it exits.
// Returns an error if initialization or runtime fails.
func (a *Application) Run(ctx context.Context) error {
	// Derive a cancelable context so in-flight provider calls are interrupted on exit.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Session.Start(ctx)
	defer a.Session.Stop()
	defer func() { _ = a.Logger.Sync() }()

	a.Logger.Info("session started",
		zap.String("session", a.Session.ID()),
		zap.String("provider", a.Config.Provider),
		zap.Strings("models", a.Config.Models))

	// Run Bubble Tea program (blocks until exit)
	if _, err := a.Program.Run(); err != nil {
		return err
	}

	return nil
}
