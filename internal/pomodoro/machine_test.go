package pomodoro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pomodoro/internal/clock"
	"github.com/roach88/pomodoro/internal/testutil"
)

type fixture struct {
	sched *clock.VirtualScheduler
	sink  *testutil.RecordingSink
	m     *Machine
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	sched := clock.NewVirtualScheduler()
	sink := testutil.NewRecordingSink()
	m, err := New(cfg, WithScheduler(sched), WithSink(sink))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return &fixture{sched: sched, sink: sink, m: m}
}

func newDefault(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, DefaultConfig())
}

func TestNew_DefaultDurations(t *testing.T) {
	f := newDefault(t)

	assert.Equal(t, 25*time.Minute, f.m.Duration())
	assert.Equal(t, 5*time.Minute, f.m.ShortBreakDuration())
	assert.Equal(t, 10*time.Minute, f.m.LongBreakDuration())
	assert.Equal(t, DefaultTick, f.m.Config().Tick)
}

func TestNew_GivenDuration(t *testing.T) {
	for _, minutes := range []int{30, 40} {
		cfg := DefaultConfig()
		cfg.Work = time.Duration(minutes) * time.Minute
		f := newFixture(t, cfg)
		assert.Equal(t, cfg.Work, f.m.Duration())
		assert.Equal(t, cfg.Work, f.m.Clock())
	}
}

func TestNew_StoppedWhenCreated(t *testing.T) {
	f := newDefault(t)

	snap := f.m.Snapshot()
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, 25*time.Minute, snap.Clock)
	assert.Equal(t, 0, snap.Breaks)
	assert.False(t, f.m.Ticking())
	assert.Equal(t, []string{"Stopped"}, f.sink.Messages())
}

func TestNew_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"zero work", func(c *Config) { c.Work = 0 }, "work"},
		{"negative short", func(c *Config) { c.ShortBreak = -time.Minute }, "short_break"},
		{"zero long", func(c *Config) { c.LongBreak = 0 }, "long_break"},
		{"negative tick", func(c *Config) { c.Tick = -time.Second }, "tick"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)

			m, err := New(cfg)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, IsConfigError(err))

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, ErrCodeInvalidConfiguration, ce.Code)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestNew_ZeroTickDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tick = 0
	f := newFixture(t, cfg)
	assert.Equal(t, time.Second, f.m.Config().Tick)
}

func TestStart_Running(t *testing.T) {
	f := newDefault(t)

	f.m.Start()

	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, 25*time.Minute, f.m.Clock())
	assert.Equal(t, 0, f.m.Breaks())
	assert.True(t, f.m.Ticking())
	assert.Equal(t, "Running", f.sink.Last())
}

func TestNotStarted_NeverFinishes(t *testing.T) {
	f := newDefault(t)

	f.sched.AdvanceBy(26 * time.Minute)

	assert.Equal(t, Stopped, f.m.State())
	assert.Equal(t, 0, f.sched.Pending())
}

func TestStart_FinishedWhenTimeExpires(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	f.sched.AdvanceBy(26 * time.Minute)

	assert.Equal(t, Finished, f.m.State())
	assert.Equal(t, time.Duration(0), f.m.Clock())
	assert.False(t, f.m.Ticking())
	assert.Equal(t, 0, f.sched.Pending())
}

func TestStart_FinishedAtExactlyWorkDuration(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	f.sched.AdvanceBy(25*time.Minute - time.Second)
	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, time.Second, f.m.Clock())

	f.sched.AdvanceBy(time.Second)
	assert.Equal(t, Finished, f.m.State())
}

func TestStart_RunningWhenTimeNotExpired(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	f.sched.AdvanceBy(5 * time.Minute)

	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, 20*time.Minute, f.m.Clock())
}

func TestStart_ClockTracksElapsedTicks(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	for _, elapsed := range []time.Duration{time.Second, 59 * time.Second, 10 * time.Minute} {
		f.sched.AdvanceTo(clock.Epoch.Add(elapsed))
		assert.Equal(t, 25*time.Minute-elapsed, f.m.Clock(), "after %s", elapsed)
	}
}

func TestStart_SubTickAdvanceDoesNotMoveClock(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	f.sched.AdvanceBy(999 * time.Millisecond)
	assert.Equal(t, 25*time.Minute, f.m.Clock())
}

func TestFinished_StaysFinished(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(25 * time.Minute)
	require.Equal(t, Finished, f.m.State())

	f.sched.AdvanceBy(3 * time.Hour)

	assert.Equal(t, Finished, f.m.State())
	assert.Equal(t, []string{"Stopped", "Running", "Finished"}, f.sink.Messages())
}

func TestStart_NoBreaks(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	assert.Equal(t, 0, f.m.Breaks())
}

func TestShortBreak_NotWhenNotStarted(t *testing.T) {
	f := newDefault(t)

	f.m.ShortBreak()

	assert.Equal(t, Stopped, f.m.State())
	assert.Equal(t, 0, f.m.Breaks())
}

func TestShortBreak_CountsBreaks(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	f.m.ShortBreak()

	assert.Equal(t, 1, f.m.Breaks())
	assert.Equal(t, Break, f.m.State())
	assert.Equal(t, 5*time.Minute, f.m.Clock())
}

func TestLongBreak_UsesLongDuration(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	f.m.LongBreak()

	assert.Equal(t, Break, f.m.State())
	assert.Equal(t, 10*time.Minute, f.m.Clock())
	assert.Equal(t, 1, f.m.Breaks())
}

func TestBreak_FromBreakCountsAgain(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.m.ShortBreak()
	f.sched.AdvanceBy(time.Minute)

	f.m.LongBreak()

	assert.Equal(t, 2, f.m.Breaks())
	assert.Equal(t, Break, f.m.State())
	assert.Equal(t, 10*time.Minute, f.m.Clock())
	assert.Equal(t, 1, f.sched.Pending())
}

func TestBreak_EndsIntoFreshWorkInterval(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(3 * time.Minute)
	f.m.ShortBreak()

	f.sched.AdvanceBy(6 * time.Minute)

	assert.Equal(t, Running, f.m.State())
	// The break ended at 5m; one more minute of the new interval has passed.
	assert.Equal(t, 24*time.Minute, f.m.Clock())
	assert.Equal(t, 1, f.m.Breaks())
	assert.Equal(t, 1, f.sched.Pending())
}

func TestBreak_ThenWorkRunsToFinished(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.m.ShortBreak()

	f.sched.AdvanceBy(5*time.Minute + 25*time.Minute)

	assert.Equal(t, Finished, f.m.State())
	assert.Equal(t, []string{"Stopped", "Running", "Break", "Running", "Finished"}, f.sink.Messages())
}

func TestStart_Restarts(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(5 * time.Minute)

	f.m.Start()

	assert.Equal(t, 25*time.Minute, f.m.Clock())
	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, 1, f.sched.Pending())
}

func TestStart_ResetsBreaks(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(5 * time.Minute)
	f.m.ShortBreak()

	f.m.Start()

	assert.Equal(t, 0, f.m.Breaks())
	assert.Equal(t, 25*time.Minute, f.m.Clock())
}

func TestStart_FromEveryState(t *testing.T) {
	for name, reach := range reachers() {
		t.Run(name, func(t *testing.T) {
			f := newDefault(t)
			reach(f)

			f.m.Start()

			snap := f.m.Snapshot()
			assert.Equal(t, Running, snap.State)
			assert.Equal(t, 25*time.Minute, snap.Clock)
			assert.Equal(t, 0, snap.Breaks)
			assert.Equal(t, 1, f.sched.Pending())
		})
	}
}

func TestPause_FreezesClock(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(10 * time.Second)

	f.m.Pause()
	f.sched.AdvanceBy(time.Hour)

	assert.Equal(t, NormalPaused, f.m.State())
	assert.Equal(t, 25*time.Minute-10*time.Second, f.m.Clock())
	assert.False(t, f.m.Ticking())
}

func TestResume_ContinuesWithoutLostOrRepeatedTicks(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(10 * time.Second)
	f.m.Pause()
	f.sched.AdvanceBy(time.Hour)

	f.m.Resume()
	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, 25*time.Minute-10*time.Second, f.m.Clock())

	f.sched.AdvanceBy(time.Second)
	assert.Equal(t, 25*time.Minute-11*time.Second, f.m.Clock())

	f.sched.AdvanceBy(25*time.Minute - 12*time.Second)
	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, time.Second, f.m.Clock())

	f.sched.AdvanceBy(time.Second)
	assert.Equal(t, Finished, f.m.State())
}

func TestPauseResume_RoundTripMatchesTicksAdvanced(t *testing.T) {
	f := newDefault(t)
	f.m.Start()

	var running time.Duration
	for _, step := range []time.Duration{7 * time.Second, 3 * time.Minute, 1 * time.Second, 42 * time.Second} {
		f.sched.AdvanceBy(step)
		running += step
		f.m.Pause()
		f.sched.AdvanceBy(17 * time.Minute)
		f.m.Resume()
	}

	assert.Equal(t, 25*time.Minute-running, f.m.Clock())
}

func TestPauseResume_DuringBreak(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.m.ShortBreak()
	f.sched.AdvanceBy(time.Minute)

	f.m.Pause()
	assert.Equal(t, BreakPaused, f.m.State())
	assert.Equal(t, 4*time.Minute, f.m.Clock())

	f.sched.AdvanceBy(10 * time.Minute)
	assert.Equal(t, 4*time.Minute, f.m.Clock())

	f.m.Resume()
	assert.Equal(t, Break, f.m.State())

	f.sched.AdvanceBy(4 * time.Minute)
	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, 25*time.Minute, f.m.Clock())
	assert.Equal(t, 1, f.m.Breaks())

	f.sched.AdvanceBy(25 * time.Minute)
	assert.Equal(t, Finished, f.m.State())
}

func TestStop_Resets(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.m.ShortBreak()
	f.sched.AdvanceBy(time.Minute)

	f.m.Stop()

	snap := f.m.Snapshot()
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, 25*time.Minute, snap.Clock)
	assert.Equal(t, 0, snap.Breaks)
	assert.Equal(t, 0, f.sched.Pending())

	f.sched.AdvanceBy(time.Hour)
	assert.Equal(t, Stopped, f.m.State())
}

func TestClose_ReleasesWithoutChangingState(t *testing.T) {
	f := newDefault(t)
	f.m.Start()
	f.sched.AdvanceBy(time.Minute)
	before := f.m.Snapshot()
	logged := len(f.sink.Messages())

	require.NoError(t, f.m.Close())
	require.NoError(t, f.m.Close())
	f.sched.AdvanceBy(time.Hour)

	assert.Equal(t, before, f.m.Snapshot())
	assert.Len(t, f.sink.Messages(), logged)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestConcreteScenario(t *testing.T) {
	f := newDefault(t)

	f.m.Start()
	f.sched.AdvanceBy(25*time.Minute + time.Minute)
	assert.Equal(t, Finished, f.m.State())

	f.m.Start()
	f.sched.AdvanceBy(25*time.Minute - 20*time.Minute)
	assert.Equal(t, Running, f.m.State())
	assert.Equal(t, 20*time.Minute, f.m.Clock())

	f.m.Start()
	f.m.ShortBreak()
	f.sched.AdvanceBy(5*time.Minute + time.Minute)
	assert.Equal(t, Running, f.m.State())

	f.m.Start()
	f.sched.AdvanceBy(5 * time.Minute)
	f.m.Start()
	assert.Equal(t, 25*time.Minute, f.m.Clock())
	assert.Equal(t, 0, f.m.Breaks())
}

// reachers drives a fresh fixture into each state.
func reachers() map[string]func(*fixture) {
	return map[string]func(*fixture){
		"Stopped": func(f *fixture) {},
		"Running": func(f *fixture) {
			f.m.Start()
			f.sched.AdvanceBy(time.Minute)
		},
		"NormalPaused": func(f *fixture) {
			f.m.Start()
			f.sched.AdvanceBy(time.Minute)
			f.m.Pause()
		},
		"Break": func(f *fixture) {
			f.m.Start()
			f.m.ShortBreak()
			f.sched.AdvanceBy(time.Minute)
		},
		"BreakPaused": func(f *fixture) {
			f.m.Start()
			f.m.ShortBreak()
			f.sched.AdvanceBy(time.Minute)
			f.m.Pause()
		},
		"Finished": func(f *fixture) {
			f.m.Start()
			f.sched.AdvanceBy(25 * time.Minute)
		},
	}
}

func TestInvalidOperations_AreNoops(t *testing.T) {
	ops := map[string]func(*Machine){
		"ShortBreak": (*Machine).ShortBreak,
		"LongBreak":  (*Machine).LongBreak,
		"Pause":      (*Machine).Pause,
		"Resume":     (*Machine).Resume,
	}
	invalid := map[string][]string{
		"Stopped":      {"ShortBreak", "LongBreak", "Pause", "Resume"},
		"Finished":     {"ShortBreak", "LongBreak", "Pause", "Resume"},
		"NormalPaused": {"ShortBreak", "LongBreak", "Pause"},
		"BreakPaused":  {"ShortBreak", "LongBreak", "Pause"},
		"Running":      {"Resume"},
		"Break":        {"Resume"},
	}

	for stateName, reach := range reachers() {
		for _, opName := range invalid[stateName] {
			t.Run(stateName+"/"+opName, func(t *testing.T) {
				f := newDefault(t)
				reach(f)
				require.Equal(t, stateName, f.m.State().String())

				before := f.m.Snapshot()
				ticking := f.m.Ticking()
				pending := f.sched.Pending()
				logged := len(f.sink.Messages())

				ops[opName](f.m)

				assert.Equal(t, before, f.m.Snapshot())
				assert.Equal(t, ticking, f.m.Ticking())
				assert.Equal(t, pending, f.sched.Pending())
				assert.Len(t, f.sink.Messages(), logged)
			})
		}
	}
}

func TestAtMostOneLiveCountdown(t *testing.T) {
	f := newDefault(t)
	sequence := []func(){
		f.m.Start, f.m.ShortBreak, f.m.Pause, f.m.Resume, f.m.LongBreak,
		f.m.Pause, f.m.Resume, f.m.Start, f.m.Pause, f.m.Resume, f.m.Stop,
		f.m.Start, f.m.ShortBreak, f.m.ShortBreak,
	}
	for _, op := range sequence {
		op()
		assert.LessOrEqual(t, f.sched.Pending(), 1)
		f.sched.AdvanceBy(13 * time.Second)
		assert.LessOrEqual(t, f.sched.Pending(), 1)
	}
}

func TestSink_PanicIsTolerated(t *testing.T) {
	sched := clock.NewVirtualScheduler()
	m, err := New(DefaultConfig(), WithScheduler(sched), WithSink(testutil.PanickingSink{}))
	require.NoError(t, err)
	defer m.Close()

	assert.NotPanics(t, func() {
		m.Start()
		m.ShortBreak()
		sched.AdvanceBy(5 * time.Minute)
	})
	assert.Equal(t, Running, m.State())
	assert.Equal(t, 25*time.Minute, m.Clock())
}

func TestSink_LogsEveryTransition(t *testing.T) {
	f := newDefault(t)

	f.m.Start()
	f.m.Pause()
	f.m.Resume()
	f.m.ShortBreak()
	f.m.Pause()
	f.m.Resume()
	f.m.Stop()

	assert.Equal(t, []string{
		"Stopped", "Running", "NormalPaused", "Running",
		"Break", "BreakPaused", "Break", "Stopped",
	}, f.sink.Messages())
}

func TestSinkFunc(t *testing.T) {
	var got []string
	sched := clock.NewVirtualScheduler()
	m, err := New(DefaultConfig(), WithScheduler(sched), WithSink(SinkFunc(func(msg string) {
		got = append(got, msg)
	})))
	require.NoError(t, err)
	defer m.Close()

	m.Start()
	assert.Equal(t, []string{"Stopped", "Running"}, got)
}

func TestRealScheduler_RunsToFinished(t *testing.T) {
	cfg := Config{
		Work:       20 * time.Millisecond,
		ShortBreak: 10 * time.Millisecond,
		LongBreak:  10 * time.Millisecond,
		Tick:       time.Millisecond,
	}
	m, err := New(cfg)
	require.NoError(t, err)
	defer m.Close()

	m.Start()

	require.Eventually(t, func() bool {
		return m.State() == Finished
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, time.Duration(0), m.Clock())
	assert.False(t, m.Ticking())
}

func TestRealScheduler_ConcurrentCallers(t *testing.T) {
	cfg := Config{
		Work:       time.Second,
		ShortBreak: 50 * time.Millisecond,
		LongBreak:  50 * time.Millisecond,
		Tick:       time.Millisecond,
	}
	m, err := New(cfg)
	require.NoError(t, err)
	defer m.Close()

	m.Start()
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				m.Pause()
				m.Resume()
				m.ShortBreak()
				_ = m.Snapshot()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	assert.GreaterOrEqual(t, m.Breaks(), 1)
	m.Stop()
	assert.False(t, m.Ticking())
}
