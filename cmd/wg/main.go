package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own formatted error output; repeat the
		// message only for errors that never reached a formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
