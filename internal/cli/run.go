package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pomodoro/internal/clock"
	"github.com/roach88/pomodoro/internal/config"
	"github.com/roach88/pomodoro/internal/journal"
	"github.com/roach88/pomodoro/internal/pomodoro"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Work    int
	Short   int
	Long    int
	Journal string

	// Scheduler overrides the time source (for testing).
	// If nil, defaults to clock.RealScheduler.
	Scheduler clock.Scheduler

	// IDGenerator overrides the journal session ID generator (for testing).
	// If nil, defaults to journal.UUIDv7Generator.
	IDGenerator journal.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive timer",
		Long: `Start an interactive pomodoro timer.

Commands are read from standard input, one per line, either by number or
by name (case-insensitive). Every state change is printed as it happens
and, with --journal, appended to a SQLite journal.

Example:
  pomodoro run
  pomodoro run --work 50 --short 10 --journal ~/pomodoro.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimer(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Work, "work", 0, "work interval in minutes (overrides config)")
	cmd.Flags().IntVar(&opts.Short, "short", 0, "short break in minutes (overrides config)")
	cmd.Flags().IntVar(&opts.Long, "long", 0, "long break in minutes (overrides config)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (overrides config)")

	return cmd
}

// effectiveConfig applies command-line overrides to the config file.
func (o *RunOptions) effectiveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("work") {
		cfg.WorkMinutes = o.Work
	}
	if flags.Changed("short") {
		cfg.ShortBreakMinutes = o.Short
	}
	if flags.Changed("long") {
		cfg.LongBreakMinutes = o.Long
	}
	if flags.Changed("journal") {
		cfg.Journal = o.Journal
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func runTimer(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := opts.effectiveConfig(cmd)
	if err != nil {
		return err
	}
	logger := opts.newLogger(cfg, cmd.ErrOrStderr())

	sched := opts.Scheduler
	if sched == nil {
		sched = clock.RealScheduler{}
	}

	out := NewStateWriter(cmd.OutOrStdout(), sched)
	sinks := []pomodoro.Sink{journal.NewSlogSink(logger), out}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	if cfg.Journal != "" {
		j, rec, err := openRecorder(parentCtx, opts, cfg, sched, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		sinks = append(sinks, rec.Sink(logger))
	}

	m, err := pomodoro.New(cfg.Timer(),
		pomodoro.WithScheduler(sched),
		pomodoro.WithSink(journal.Multi(sinks...)),
		pomodoro.WithLogger(logger),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create timer", err)
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	console := NewConsole(m, cmd.InOrStdin(), out, opts.Format)
	if err := console.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "console error", err)
	}

	logger.Debug("timer stopped", "state", m.State().String())
	return nil
}

func openRecorder(ctx context.Context, opts *RunOptions, cfg config.Config, sched clock.Scheduler, logger *slog.Logger) (*journal.Journal, *journal.Recorder, error) {
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}

	ids := opts.IDGenerator
	if ids == nil {
		ids = journal.UUIDv7Generator{}
	}

	rec, err := journal.NewRecorder(ctx, j, ids.Generate(), cfg.Timer(), journal.WithNow(sched.Now))
	if err != nil {
		j.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start journal session", err)
	}
	logger.Info("journal session started", "path", cfg.Journal, "session", rec.SessionID())
	return j, rec, nil
}
