package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/internal/colors"
)

// outputWriter is the writer used by PrintHelp. Can be changed for testing.
var outputWriter io.Writer

// commandOrder lists commands in the order help shows them.
var commandOrder = []string{
	"list",
	"status",
	"mark-read",
	"mark-all-read",
	"delete",
	"clear",
	"watch",
	"tui",
	"login",
	"logout",
	"version",
}

// PrintHelp prints the help text of the root command.
func PrintHelp(cmd *cobra.Command) {
	w := outputWriter
	if w == nil {
		w = cmd.OutOrStdout()
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %s%-20s%s %s", colors.Cyan, found.Use, colors.Reset, found.Short))
	}

	versionStr := cmd.Version
	if versionStr == "" {
		versionStr = "0.0.0"
	}

	fmt.Fprintf(w, `%smotinbox %s%s

%s

%sUSAGE:%s
    motinbox [COMMAND] [OPTIONS]

%sCOMMANDS:%s
%s

%sOPTIONS:%s
    --role <role>   Inbox to act on: driver, garage or admin
    --debug         Print debug output
    --quiet         Only print errors
    -h, --help      Show help message
`, colors.Blue, versionStr, colors.Reset, cmd.Short, colors.Blue, colors.Reset, colors.Blue, colors.Reset, strings.Join(cmdLines, "\n"), colors.Blue, colors.Reset)
}
