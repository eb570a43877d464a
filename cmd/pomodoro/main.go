// Command pomodoro is a focus timer with a console, a scenario simulator
// and a SQLite journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pomodoro/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
