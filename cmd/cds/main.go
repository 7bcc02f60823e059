// Command cds loads contest event feeds, computes standings and serves
// role-filtered views of the contest.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cds/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
