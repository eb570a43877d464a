package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

// createTestJournal creates a journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

var baseTime = time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")

	version, err := j.schemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, j.Close())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "journal.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Journal{}).Close())
}

func TestBeginSession_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	cfg := pomodoro.DefaultConfig()

	require.NoError(t, j.BeginSession(ctx, "s1", baseTime, cfg))
	require.NoError(t, j.BeginSession(ctx, "s1", baseTime.Add(time.Hour), cfg))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.True(t, baseTime.Equal(sessions[0].StartedAt))
	assert.Equal(t, 25*time.Minute, sessions[0].Config.Work)
	assert.Equal(t, 5*time.Minute, sessions[0].Config.ShortBreak)
	assert.Equal(t, 10*time.Minute, sessions[0].Config.LongBreak)
	assert.Equal(t, 0, sessions[0].Transitions)
}

func TestAppend_RequiresSession(t *testing.T) {
	j := createTestJournal(t)

	err := j.Append(context.Background(), Entry{SessionID: "ghost", Seq: 1, State: "Running", At: baseTime})
	assert.Error(t, err)
}

func TestAppend_RejectsDuplicateSeq(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginSession(ctx, "s1", baseTime, pomodoro.DefaultConfig()))

	require.NoError(t, j.Append(ctx, Entry{SessionID: "s1", Seq: 1, State: "Running", At: baseTime}))
	assert.Error(t, j.Append(ctx, Entry{SessionID: "s1", Seq: 1, State: "Break", At: baseTime}))
}

func TestEntries_OrderedBySeq(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginSession(ctx, "s1", baseTime, pomodoro.DefaultConfig()))

	// Same timestamp, inserted out of order.
	for _, e := range []Entry{
		{SessionID: "s1", Seq: 3, State: "Finished", At: baseTime},
		{SessionID: "s1", Seq: 1, State: "Stopped", At: baseTime},
		{SessionID: "s1", Seq: 2, State: "Running", At: baseTime},
	} {
		require.NoError(t, j.Append(ctx, e))
	}

	entries, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"Stopped", "Running", "Finished"}, []string{entries[0].State, entries[1].State, entries[2].State})
	assert.True(t, baseTime.Equal(entries[0].At))

	empty, err := j.Entries(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessions_CountsTransitions(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginSession(ctx, "b", baseTime.Add(time.Hour), pomodoro.DefaultConfig()))
	require.NoError(t, j.BeginSession(ctx, "a", baseTime, pomodoro.DefaultConfig()))
	require.NoError(t, j.Append(ctx, Entry{SessionID: "a", Seq: 1, State: "Stopped", At: baseTime}))
	require.NoError(t, j.Append(ctx, Entry{SessionID: "a", Seq: 2, State: "Running", At: baseTime}))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Transitions)
	assert.Equal(t, "b", sessions[1].ID)
	assert.Equal(t, 0, sessions[1].Transitions)

	s, err := j.Session(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", s.ID)

	_, err = j.Session(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSequence_Monotonic(t *testing.T) {
	s := NewSequence()
	assert.Equal(t, int64(0), s.Current())
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
	assert.Equal(t, int64(2), s.Current())
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
