// Package testutil holds deterministic helpers shared by package tests.
package testutil

import (
	"errors"
	"sync"
)

// RecordingSink captures every message it receives.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RecordingSink struct {
	mu       sync.Mutex
	messages []string
}

// NewRecordingSink creates an empty sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Info records msg.
func (s *RecordingSink) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of everything recorded so far.
func (s *RecordingSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Last returns the most recent message, or "" if none.
func (s *RecordingSink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

// Reset forgets all recorded messages.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// PanickingSink panics on every message.
type PanickingSink struct{}

// Info panics.
func (PanickingSink) Info(msg string) {
	panic("sink unavailable: " + msg)
}

// ErrSinkUnavailable is returned by FailingWriter.
var ErrSinkUnavailable = errors.New("sink unavailable")

// FailingWriter rejects every write and counts the attempts.
type FailingWriter struct {
	mu       sync.Mutex
	attempts int
}

// Write always fails with ErrSinkUnavailable.
func (w *FailingWriter) Write(string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts++
	return ErrSinkUnavailable
}

// Attempts returns how many writes were rejected.
func (w *FailingWriter) Attempts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempts
}
