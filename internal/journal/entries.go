package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

const timeLayout = time.RFC3339Nano

// Session is one run of a machine, with the durations it ran with.
type Session struct {
	ID          string          `json:"id"`
	StartedAt   time.Time       `json:"started_at"`
	Config      pomodoro.Config `json:"config"`
	Transitions int             `json:"transitions"`
}

// Entry is a single recorded state change.
type Entry struct {
	SessionID string    `json:"session_id"`
	Seq       int64     `json:"seq"`
	State     string    `json:"state"`
	At        time.Time `json:"at"`
}

// BeginSession records a new session.
// Uses ON CONFLICT(id) DO NOTHING: beginning the same session twice is a no-op.
func (j *Journal) BeginSession(ctx context.Context, id string, startedAt time.Time, cfg pomodoro.Config) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, work_ms, short_break_ms, long_break_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		startedAt.UTC().Format(timeLayout),
		cfg.Work.Milliseconds(),
		cfg.ShortBreak.Milliseconds(),
		cfg.LongBreak.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// Append inserts a state change. The session must exist (foreign key).
// A duplicate (session, seq) pair is rejected.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transitions (session_id, seq, state, at)
		VALUES (?, ?, ?, ?)
	`,
		e.SessionID,
		e.Seq,
		e.State,
		e.At.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

// Entries returns a session's transitions in sequence order.
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, state, at
		FROM transitions
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.State, &at); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse transition time: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return entries, nil
}

// Sessions returns every session, oldest first, with its transition count.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.work_ms, s.short_break_ms, s.long_break_ms,
		       COUNT(t.seq)
		FROM sessions s
		LEFT JOIN transitions t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at ASC, s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var startedAt string
		var workMs, shortMs, longMs int64
		if err := rows.Scan(&s.ID, &startedAt, &workMs, &shortMs, &longMs, &s.Transitions); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if s.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse session time: %w", err)
		}
		s.Config = pomodoro.Config{
			Work:       time.Duration(workMs) * time.Millisecond,
			ShortBreak: time.Duration(shortMs) * time.Millisecond,
			LongBreak:  time.Duration(longMs) * time.Millisecond,
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Session returns one session, or sql.ErrNoRows wrapped if it is unknown.
func (j *Journal) Session(ctx context.Context, id string) (Session, error) {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return Session{}, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return Session{}, fmt.Errorf("session %q: %w", id, sql.ErrNoRows)
}
