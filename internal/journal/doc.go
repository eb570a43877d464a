// Package journal provides the sinks that observe a pomodoro.Machine.
//
// The simple sinks are SlogSink, which logs each state change, and Multi,
// which fans one state change out to several sinks.
//
// Journal is an append-only SQLite log of state changes grouped into
// sessions. Recorder adapts a Journal to pomodoro.Sink through Safe, so a
// failing database never disturbs the machine that is writing to it.
//
// The journal is an audit trail only: nothing reads it back into a running
// machine.
//
// # Ordering
//
// Rows are ordered by a per-session logical sequence number, never by
// timestamp. Wall-clock time is recorded for display but two transitions in
// the same millisecond still sort deterministically.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads (history command) during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: transitions must reference a session
package journal
