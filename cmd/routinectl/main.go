// Command routinectl manages a schedule storage directory.
package main

import (
	"os"

	"github.com/roach88/routines/internal/cli"
)

func main() {
	opts := &cli.RootOptions{DotEnv: ".env"}
	cmd := cli.NewRootCommandWithOptions(opts)
	os.Exit(cli.Execute(cmd, opts, os.Args[1:]))
}
