package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/pomodoro/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Session  string
}

// SessionList is the history listing of all sessions.
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionSummary describes one journal session.
type SessionSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	Work        string    `json:"work"`
	ShortBreak  string    `json:"short_break"`
	LongBreak   string    `json:"long_break"`
	Transitions int       `json:"transitions"`
}

// String renders one line per session.
func (l SessionList) String() string {
	if len(l.Sessions) == 0 {
		return "No sessions recorded.\n"
	}
	var b strings.Builder
	for _, s := range l.Sessions {
		fmt.Fprintf(&b, "%s  %s  %s/%s/%s  %d transitions\n",
			s.ID, s.StartedAt.Format(time.RFC3339), s.Work, s.ShortBreak, s.LongBreak, s.Transitions)
	}
	return b.String()
}

// SessionDetail is the history of one session.
type SessionDetail struct {
	SessionSummary
	Entries []EntryView `json:"entries"`
}

// EntryView is one journaled state change.
type EntryView struct {
	Seq   int64     `json:"seq"`
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// String renders the session header and one line per state change.
func (d SessionDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (started %s)\n", d.ID, d.StartedAt.Format(time.RFC3339))
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "  %3d  %s  %s\n", e.Seq, e.At.Format(time.TimeOnly), e.State)
	}
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled sessions",
		Long: `Show sessions recorded by "pomodoro run --journal".

Without --session, lists every session with its interval lengths and the
number of state changes. With --session, prints that session's state
changes in order.

Examples:
  pomodoro history --db ~/pomodoro.db
  pomodoro history --db ~/pomodoro.db --session 0190d6c2-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show the state changes of one session")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	// Open would create an empty journal; history only reads existing ones.
	if _, err := os.Stat(opts.Database); err != nil {
		_ = out.Error(ErrCodeJournal, "journal not found", opts.Database)
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if opts.Session == "" {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		list := SessionList{Sessions: make([]SessionSummary, 0, len(sessions))}
		for _, s := range sessions {
			list.Sessions = append(list.Sessions, summarize(s))
		}
		return out.Success(list)
	}

	s, err := j.Session(ctx, opts.Session)
	if errors.Is(err, sql.ErrNoRows) {
		_ = out.Error(ErrCodeJournal, "session not found", opts.Session)
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	entries, err := j.Entries(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read entries", err)
	}

	detail := SessionDetail{SessionSummary: summarize(s), Entries: make([]EntryView, 0, len(entries))}
	for _, e := range entries {
		detail.Entries = append(detail.Entries, EntryView{Seq: e.Seq, State: e.State, At: e.At})
	}
	return out.Success(detail)
}

func summarize(s journal.Session) SessionSummary {
	return SessionSummary{
		ID:          s.ID,
		StartedAt:   s.StartedAt,
		Work:        s.Config.Work.String(),
		ShortBreak:  s.Config.ShortBreak.String(),
		LongBreak:   s.Config.LongBreak.String(),
		Transitions: s.Transitions,
	}
}
