package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

// Writer is a destination whose writes can fail.
type Writer interface {
	Write(msg string) error
}

// Safe adapts w to pomodoro.Sink. Errors and panics from w are logged at
// warn level and otherwise dropped.
func Safe(w Writer, logger *slog.Logger) pomodoro.Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &safeSink{w: w, logger: logger}
}

type safeSink struct {
	w      Writer
	logger *slog.Logger
}

func (s *safeSink) Info(msg string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("sink panicked", "state", msg, "panic", r)
		}
	}()
	if err := s.w.Write(msg); err != nil {
		s.logger.Warn("sink write failed", "state", msg, "error", err)
	}
}

// SlogSink logs each state change at info level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink logging to logger, or slog.Default() if nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Info logs msg as the new state.
func (s *SlogSink) Info(msg string) {
	s.logger.Info("state changed", "state", msg)
}

// Multi forwards every message to each of sinks in order. A panic in one
// sink does not keep the message from the ones after it.
func Multi(sinks ...pomodoro.Sink) pomodoro.Sink {
	return multiSink(append([]pomodoro.Sink(nil), sinks...))
}

type multiSink []pomodoro.Sink

func (m multiSink) Info(msg string) {
	for _, s := range m {
		if s == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			s.Info(msg)
		}()
	}
}

// Recorder writes state changes of one session to a Journal.
type Recorder struct {
	journal   *Journal
	sessionID string
	seq       *Sequence
	now       func() time.Time
	timeout   time.Duration
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithNow sets the timestamp source. Default: time.Now.
func WithNow(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder begins a session in j and returns a Writer for it.
func NewRecorder(ctx context.Context, j *Journal, sessionID string, cfg pomodoro.Config, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		journal:   j,
		sessionID: sessionID,
		seq:       NewSequence(),
		now:       time.Now,
		timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := j.BeginSession(ctx, sessionID, r.now(), cfg); err != nil {
		return nil, fmt.Errorf("new recorder: %w", err)
	}
	return r, nil
}

// SessionID returns the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Write appends msg as the session's next state.
func (r *Recorder) Write(msg string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	return r.journal.Append(ctx, Entry{
		SessionID: r.sessionID,
		Seq:       r.seq.Next(),
		State:     msg,
		At:        r.now(),
	})
}

// Sink returns the recorder wrapped by Safe.
func (r *Recorder) Sink(logger *slog.Logger) pomodoro.Sink {
	return Safe(r, logger)
}
