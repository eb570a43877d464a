package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pomodoro/internal/clock"
	"github.com/roach88/pomodoro/internal/pomodoro"
	"github.com/roach88/pomodoro/internal/testutil"
)

func newTestConsole(t *testing.T, format string) (*Console, *clock.VirtualScheduler, *testutil.RecordingSink, *bytes.Buffer) {
	t.Helper()
	sched := clock.NewVirtualScheduler()
	sink := testutil.NewRecordingSink()
	m, err := pomodoro.New(pomodoro.DefaultConfig(), pomodoro.WithScheduler(sched), pomodoro.WithSink(sink))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	out := &bytes.Buffer{}
	return NewConsole(m, strings.NewReader(""), out, format), sched, sink, out
}

func TestConsole_DispatchByNumberAndName(t *testing.T) {
	c, sched, sink, _ := newTestConsole(t, "text")

	for _, line := range []string{"1", "  SHORTBREAK  ", "Pause", "5", "long", "stop"} {
		exit, err := c.Dispatch(line)
		require.NoError(t, err)
		assert.False(t, exit, line)
		sched.AdvanceBy(time.Second)
	}

	assert.Equal(t,
		[]string{"Stopped", "Running", "Break", "BreakPaused", "Break", "Break", "Stopped"},
		sink.Messages())
}

func TestConsole_DispatchFoldsCase(t *testing.T) {
	c, _, sink, _ := newTestConsole(t, "text")

	// U+017F LATIN SMALL LETTER LONG S folds to "s" but has no lower-case
	// mapping, so only full case folding recognises this spelling.
	_, err := c.Dispatch("ſtart")
	require.NoError(t, err)
	assert.Equal(t, "Running", sink.Last())
}

func TestConsole_Exit(t *testing.T) {
	c, _, _, _ := newTestConsole(t, "text")

	for _, line := range []string{"8", "exit", "QUIT", "q"} {
		exit, err := c.Dispatch(line)
		require.NoError(t, err)
		assert.True(t, exit, line)
	}
}

func TestConsole_UnknownAndBlankInput(t *testing.T) {
	c, _, sink, out := newTestConsole(t, "text")

	exit, err := c.Dispatch("   ")
	require.NoError(t, err)
	assert.False(t, exit)

	exit, err = c.Dispatch("snooze")
	require.NoError(t, err)
	assert.False(t, exit)

	assert.Equal(t, "unknown command \"snooze\"\n", out.String())
	assert.Equal(t, []string{"Stopped"}, sink.Messages())
}

func TestConsole_Status(t *testing.T) {
	c, sched, _, out := newTestConsole(t, "text")

	_, _ = c.Dispatch("start")
	sched.AdvanceBy(61 * time.Second)
	_, err := c.Dispatch("status")
	require.NoError(t, err)

	assert.Equal(t, "Running 23:59 (breaks: 0)\n", out.String())
}

func TestConsole_StatusJSON(t *testing.T) {
	c, sched, _, out := newTestConsole(t, "json")

	_, _ = c.Dispatch("start")
	_, _ = c.Dispatch("short")
	sched.AdvanceBy(2 * time.Minute)
	_, err := c.Dispatch("7")
	require.NoError(t, err)

	var status Status
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	assert.Equal(t, Status{State: "Break", Clock: "03:00", Breaks: 1}, status)
}

func TestConsole_RunUntilExit(t *testing.T) {
	c, _, sink, out := newTestConsole(t, "text")
	c.in = strings.NewReader("1\n7\n8\n1\n")

	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, out.String(), "1. Start\n")
	assert.Contains(t, out.String(), "8. Exit\n")
	assert.Contains(t, out.String(), "Running 25:00 (breaks: 0)\n")
	// The line after Exit is never dispatched.
	assert.Equal(t, []string{"Stopped", "Running"}, sink.Messages())
}

func TestConsole_RunUntilEOF(t *testing.T) {
	c, _, sink, _ := newTestConsole(t, "text")
	c.in = strings.NewReader("start\npause")

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"Stopped", "Running", "NormalPaused"}, sink.Messages())
}

func TestConsole_RunStopsOnCancel(t *testing.T) {
	c, _, _, _ := newTestConsole(t, "text")
	r, w := io.Pipe()
	defer w.Close()
	c.in = r

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("console did not stop after cancel")
	}
}

func TestStateWriter(t *testing.T) {
	sched := clock.NewVirtualScheduler()
	buf := &bytes.Buffer{}
	w := NewStateWriter(buf, sched)

	sched.AdvanceBy(90 * time.Second)
	w.Info("Running")
	_, err := w.Write([]byte("menu\n"))
	require.NoError(t, err)

	assert.Equal(t, "[00:01:30] Running\nmenu\n", buf.String())
}
