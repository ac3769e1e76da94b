package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whispr/audit"
	"whispr/core"
	"whispr/format"
	"whispr/ui"
)

// NewRootCommand builds the whispr command tree. Running it without a
// subcommand starts the chat TUI.
func NewRootCommand() *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:   "whispr",
		Short: "Whispr - a terminal AI chat assistant",
		Long: `Whispr is a terminal chat client for Gemini and AWS Bedrock models.

Replies are rendered from lightweight markdown. Overloaded models are
retried with backoff and replaced by the next model in the preference list.

Run without arguments to start the interactive chat interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := Bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default: ~/.whispr/config.toml)")
	root.PersistentFlags().StringVarP(&opts.Provider, "provider", "p", "", "Completion backend: gemini or bedrock")
	root.PersistentFlags().StringVarP(&opts.Model, "model", "m", "", "Preferred model, tried before the configured list")
	root.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")

	root.AddCommand(newAskCommand(&opts))
	root.AddCommand(newRenderCommand())
	root.AddCommand(newConfigCommand(&opts))
	root.AddCommand(newPruneCommand(&opts))
	root.AddCommand(newLogCommand(&opts))
	return root
}

func newAskCommand(opts *Options) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), *opts, strings.Join(args, " "), raw, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply without rendering markdown")
	return cmd
}

// runAsk performs a single exchange outside the TUI. Recovery notices go to
// errOut as they happen.
func runAsk(ctx context.Context, opts Options, message string, raw bool, out, errOut io.Writer) error {
	cfg, warnings, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(errOut, "whispr: warning: %s\n", w)
	}
	logger, err := newLogger(cfg, opts.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	llmProvider, err := setupProvider(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing provider: %w", err)
	}
	session := setupSession(cfg, llmProvider, &streamNotifier{w: errOut}, logger)
	defer session.Stop()

	reply, err := session.SendUserMessage(ctx, message)
	if errors.Is(err, core.ErrEmptyMessage) {
		return err
	}
	if raw {
		fmt.Fprintln(out, reply.Text)
	} else {
		fmt.Fprintln(out, ui.NewBlockRenderer(0).Render(reply.Blocks))
	}
	if err != nil {
		logger.Warn("ask failed", zap.Error(err))
		return err
	}
	return nil
}

// streamNotifier prints recovery events as plain lines.
type streamNotifier struct {
	w io.Writer
}

func (n *streamNotifier) Send(msg any) {
	switch e := msg.(type) {
	case core.RetryEvent:
		fmt.Fprintf(n.w, "whispr: %s is overloaded, retry %d in %s\n", e.Model, e.Attempt, e.Delay)
	case core.FallbackEvent:
		fmt.Fprintf(n.w, "whispr: %s is unavailable, switching to %s\n", e.From, e.To)
	}
}

func newRenderCommand() *cobra.Command {
	var preview int
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render markdown from a file or stdin as chat replies are shown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return render(cmd.OutOrStdout(), cmd.ErrOrStderr(), string(data), preview)
		},
	}
	cmd.Flags().IntVar(&preview, "preview", 0, "Truncate to a preview of this many plain-text characters")
	return cmd
}

// render prints text as the chat page would. A truncated preview is noted
// on errOut with how much of the text it shows.
func render(out, errOut io.Writer, text string, preview int) error {
	blocks := format.ParseBlocks(text)
	if preview > 0 && format.IsOverLength(text, preview) {
		blocks = format.Preview(text, preview)
		fmt.Fprintf(errOut, "whispr: preview shows %d of %d characters\n",
			format.BlocksPlainLength(blocks), format.PlainLength(text))
	}
	_, err := fmt.Fprintln(out, ui.NewBlockRenderer(0).Render(blocks))
	return err
}

func newConfigCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, warnings, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "whispr: warning: %s\n", w)
			}
			if cfg.APIKey != "" {
				cfg.APIKey = "[REDACTED]"
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func newPruneCommand(opts *Options) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit logs older than audit_max_age_days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			result, err := audit.Prune(audit.PruneOptions{Dir: cfg.AuditDir, MaxAge: cfg.AuditMaxAge(), DryRun: dryRun})
			if err != nil {
				return err
			}
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "whispr: warning: cleanup: %s\n", e)
			}
			verb := "deleted"
			if dryRun {
				verb = "would delete"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d audit file(s) in %s\n", verb, result.Deleted, cfg.AuditDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be deleted without deleting")
	return cmd
}

func newLogCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "log <session-id>",
		Short: "Print the audited exchanges of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			entries, err := audit.Read(args[0], cfg.AuditDir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no audit entries for session %s in %s", args[0], cfg.AuditDir)
			}
			printLog(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

// printLog writes one block per exchange: a header line, the user message,
// then the reply or the failure.
func printLog(w io.Writer, entries []audit.Entry) {
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s  %s  %dms\n", e.Timestamp, ui.FormatModelName(e.Model), e.Outcome, e.DurationMS)
		fmt.Fprintf(w, "> %s\n", e.User)
		if e.Outcome == audit.OutcomeFailed {
			fmt.Fprintf(w, "! %s: %s\n", e.ErrorKind, e.Error)
			continue
		}
		fmt.Fprintf(w, "< %s\n", e.Assistant)
	}
}
