package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thenoetrevino/propboard/cmd"
	"github.com/thenoetrevino/propboard/internal/cli"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}
	// handlers have already reported errors that carry an exit code
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
