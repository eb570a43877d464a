// Package harness runs timer scenarios against virtual time.
//
// A scenario is a YAML file listing operations, time advances and
// expectations:
//
//	name: short-break
//	description: a short break hands back to a fresh work interval
//	steps:
//	  - do: start
//	  - advance: 1m
//	  - expect: {state: Running, clock: 24m}
//	  - do: short_break
//	  - advance: 5m
//	  - expect: {state: Running, clock: 25m, breaks: 1}
//
// Run executes the steps on a clock.VirtualScheduler, so a 25 minute
// interval completes instantly and every run produces the same trace.
// The trace serialises to canonical JSON (sorted keys, NFC strings) and can
// be compared against a golden file with AssertGolden.
package harness
