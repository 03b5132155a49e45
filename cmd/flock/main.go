// Command flock is the attendance analytics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/flock/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
