package app

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"whispr/audit"
	"whispr/clipboard"
	"whispr/config"
	"whispr/core"
	"whispr/core/provider"
	"whispr/providers/bedrock"
	"whispr/providers/gemini"
	"whispr/ui"
)

// Options are command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string // empty means ~/.whispr/config.toml
	Provider   string
	Model      string // moved to the front of the preference list
	Debug      bool
}

// Bootstrap creates and wires all application dependencies.
// Each phase is separate for testability.
func Bootstrap(ctx context.Context, opts Options) (*Application, error) {
	// 1. Load configuration
	cfg, warnings, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "whispr: warning: %s\n", w)
	}

	logger, err := newLogger(cfg, opts.Debug)
	if err != nil {
		return nil, err
	}

	// 2. Clean up old audit logs
	pruneAudit(cfg, os.Stderr)

	// 3. Initialize LLM provider
	llmProvider, err := setupProvider(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing provider: %w", err)
	}

	// 4. Set up UI and notifier
	scaffold := ui.NewScaffold()
	notifier := scaffold.Notifier()

	// 5. Create core session behind the event adapter
	adapter := &coreNotifierAdapter{ui: notifier}
	session := setupSession(cfg, llmProvider, adapter, logger)
	adapter.window = session.Client().Window()

	// 6. Configure UI pages
	configureUI(scaffold, notifier, session, cfg)

	// 7. Create Bubble Tea program
	program := setupProgram(scaffold, notifier)

	return &Application{
		Config:   cfg,
		Session:  session,
		Scaffold: scaffold,
		Program:  program,
		Logger:   logger,
	}, nil
}

// loadConfig loads configuration, applies overrides, validates it and
// ensures directories exist.
func loadConfig(opts Options) (config.Config, []string, error) {
	defaults := config.DefaultConfig()
	path := opts.ConfigPath
	if path == "" {
		path = defaults.ConfigFilePath()
	}
	cfg, warnings, err := config.LoadFrom(path, defaults)
	if err != nil {
		return config.Config{}, nil, err
	}

	if opts.Provider != "" && opts.Provider != cfg.Provider {
		cfg.UseProvider(opts.Provider)
	}
	cfg.PreferModel(opts.Model)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, warnings, nil
}

// pruneAudit removes audit logs older than the configured age. Failures are
// reported to w and never stop startup.
func pruneAudit(cfg config.Config, w io.Writer) {
	if !cfg.AuditEnabled {
		return
	}
	result, err := audit.Prune(audit.PruneOptions{Dir: cfg.AuditDir, MaxAge: cfg.AuditMaxAge()})
	if err != nil {
		fmt.Fprintf(w, "whispr: warning: audit cleanup failed: %v\n", err)
		return
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "whispr: warning: cleanup: %s\n", e)
	}
}

// setupProvider initializes the configured completion backend.
func setupProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderBedrock:
		p, err := bedrock.NewBedrock(ctx, cfg.AWSRegion, cfg.AWSProfile, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderGemini:
		p, err := gemini.New(ctx, cfg.ResolveAPIKey(), logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// setupSession creates the client and session. A failure to open the audit
// log is reported and the session runs without one.
func setupSession(cfg config.Config, llmProvider provider.Provider, notifier core.Notifier, logger *zap.Logger) *core.Session {
	client := core.NewClient(core.ClientConfig{
		Provider: llmProvider,
		Window:   core.NewWindow(cfg.ContextWindow),
		Cursor:   core.NewModelCursor(cfg.Models),
		Backoff: core.BackoffPolicy{
			MaxRetries: cfg.RetryBudget,
			Base:       cfg.BaseBackoff(),
			Max:        cfg.MaxBackoff(),
		},
		Persona:   core.Persona{Name: cfg.AssistantName, Creator: cfg.Creator},
		MaxTokens: cfg.MaxTokens,
		Notifier:  notifier,
		Logger:    logger,
	})

	sessionID := uuid.New().String()
	var auditLogger *audit.Logger
	if cfg.AuditEnabled {
		l, err := audit.Open(sessionID, cfg.AuditDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "whispr: warning: audit logger init failed: %v\n", err)
		} else {
			auditLogger = l
		}
	}

	display := core.Display{LongThreshold: cfg.LongMessageThreshold, PreviewLength: cfg.PreviewLength}
	return core.NewSession(sessionID, client, notifier, display, auditLogger, logger)
}

// configureUI sets up scaffold pages and status bar items.
func configureUI(scaffold *ui.Scaffold, notifier *ui.Notifier, session *core.Session, cfg config.Config) {
	ui.ConfigureDefaultScaffold(scaffold, ui.StatusInfo{
		Provider:   cfg.Provider,
		Model:      session.Client().Model(),
		WindowSize: cfg.ContextWindow,
	})

	// OSC52 goes to stderr so it never interleaves with frames on stdout.
	copier := clipboard.Default(os.Stderr, func(text string) {
		notifier.Send(ui.ShowFullViewMsg{Title: "Copy manually", Text: "```\n" + text + "\n```"})
	})

	ui.AddDefaultPages(scaffold, ui.ChatOptions{
		Session:       session,
		Copier:        copier,
		Greeting:      core.Greeting(cfg.AssistantName),
		AssistantName: cfg.AssistantName,
	})
}

// setupProgram creates the Bubble Tea program with correct screen mode.
func setupProgram(scaffold *ui.Scaffold, notifier *ui.Notifier) *tea.Program {
	app := ui.NewApp(scaffold, ui.AppConfig{
		Placeholder: "Type your message here...",
	})

	// No alt screen: replies are flushed to the primary buffer so they stay
	// in terminal scrollback after exit.
	program := tea.NewProgram(app, tea.WithMouseCellMotion())
	notifier.SetProgram(program)

	return program
}
