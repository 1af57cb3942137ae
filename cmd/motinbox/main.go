package main

import (
	"os"

	"github.com/cristianoliveira/motinbox/cmd"
	"github.com/cristianoliveira/motinbox/internal/colors"
)

func main() {
	os.Exit(run(os.Args[1:], cmd.Execute))
}

// run executes the command tree and maps its error to an exit code. The
// tui command owns the terminal, so it gets no structured startup lines.
func run(args []string, execute func() error) int {
	interactive := len(args) > 0 && args[0] == "tui"
	if !interactive {
		colors.StructuredInfo("startup", "main", "started", nil, "", nil)
	}
	if err := execute(); err != nil {
		if !interactive {
			colors.StructuredError("startup", "main", "failed", err, "", nil)
		}
		colors.Error(err.Error())
		return 1
	}
	if !interactive {
		colors.StructuredInfo("startup", "main", "completed", nil, "", nil)
	}
	return 0
}
