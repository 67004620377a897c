// Command ghgdash serves the CO2 and CH4 emissions dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ghgdash/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
