package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/roach88/pomodoro/internal/clock"
	"github.com/roach88/pomodoro/internal/pomodoro"
)

// command is one console menu entry.
type command struct {
	key     string
	label   string
	aliases []string
	run     func(c *Console) error
}

var menu = []command{
	{"1", "Start", []string{"start"}, func(c *Console) error { c.machine.Start(); return nil }},
	{"2", "ShortBreak", []string{"shortbreak", "short_break", "short"}, func(c *Console) error { c.machine.ShortBreak(); return nil }},
	{"3", "LongBreak", []string{"longbreak", "long_break", "long"}, func(c *Console) error { c.machine.LongBreak(); return nil }},
	{"4", "Pause", []string{"pause"}, func(c *Console) error { c.machine.Pause(); return nil }},
	{"5", "Resume", []string{"resume"}, func(c *Console) error { c.machine.Resume(); return nil }},
	{"6", "Stop", []string{"stop"}, func(c *Console) error { c.machine.Stop(); return nil }},
	{"7", "Status", []string{"status"}, (*Console).printStatus},
	{"8", "Exit", []string{"exit", "quit", "q"}, nil},
}

// Status is the console's view of a machine.
type Status struct {
	State  string `json:"state"`
	Clock  string `json:"clock"`
	Breaks int    `json:"breaks"`
}

// String renders the status as one text line.
func (s Status) String() string {
	return fmt.Sprintf("%s %s (breaks: %d)\n", s.State, s.Clock, s.Breaks)
}

func newStatus(snap pomodoro.Snapshot) Status {
	return Status{
		State:  snap.State.String(),
		Clock:  pomodoro.FormatClock(snap.Clock),
		Breaks: snap.Breaks,
	}
}

// Console drives a Machine from line-based input.
type Console struct {
	machine *pomodoro.Machine
	in      io.Reader
	out     io.Writer
	format  string
	fold    cases.Caser
}

// NewConsole creates a console reading commands from in and writing the
// menu and status lines to out. out must be safe for concurrent use if
// state changes are also printed to it; see StateWriter.
func NewConsole(m *pomodoro.Machine, in io.Reader, out io.Writer, format string) *Console {
	return &Console{
		machine: m,
		in:      in,
		out:     out,
		format:  format,
		fold:    cases.Fold(),
	}
}

// PrintMenu writes the numbered command list.
func (c *Console) PrintMenu() {
	var b strings.Builder
	b.WriteString("Pomodoro\n\n")
	for _, cmd := range menu {
		fmt.Fprintf(&b, "%s. %s\n", cmd.key, cmd.label)
	}
	fmt.Fprint(c.out, b.String())
}

// Dispatch runs one input line. Commands match by number or by name,
// ignoring case. It reports whether the console should exit.
func (c *Console) Dispatch(line string) (bool, error) {
	input := c.fold.String(strings.TrimSpace(line))
	if input == "" {
		return false, nil
	}

	for _, cmd := range menu {
		if input != cmd.key && !slices.Contains(cmd.aliases, input) {
			continue
		}
		if cmd.run == nil {
			return true, nil
		}
		return false, cmd.run(c)
	}

	fmt.Fprintf(c.out, "unknown command %q\n", strings.TrimSpace(line))
	return false, nil
}

// Run prints the menu and dispatches lines until Exit, end of input or
// ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.PrintMenu()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			exit, err := c.Dispatch(line)
			if err != nil {
				return err
			}
			if exit {
				return nil
			}
		}
	}
}

func (c *Console) printStatus() error {
	status := newStatus(c.machine.Snapshot())
	if c.format == "json" {
		return json.NewEncoder(c.out).Encode(status)
	}
	_, err := fmt.Fprint(c.out, status.String())
	return err
}

// StateWriter prints state changes as they happen. Writes are serialised
// with a mutex because ticks arrive on scheduler goroutines while the
// console writes from its own.
type StateWriter struct {
	mu    sync.Mutex
	w     io.Writer
	sched clock.Scheduler
}

// NewStateWriter creates a writer stamping lines with sched's time.
func NewStateWriter(w io.Writer, sched clock.Scheduler) *StateWriter {
	return &StateWriter{w: w, sched: sched}
}

// Write implements io.Writer for the console's own output.
func (s *StateWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Info implements pomodoro.Sink.
func (s *StateWriter) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] %s\n", s.sched.Now().Format(time.TimeOnly), msg)
}
