package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
)

type tuiClient interface {
	TUI(ctx context.Context) error
}

// NewTUICmd creates the tui command with explicit dependencies.
func NewTUICmd(client tuiClient) *cobra.Command {
	if client == nil {
		panic("NewTUICmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive inbox",
		Long: `Interactive terminal inbox. New pushes refresh the list while it is open.

USAGE:
    motinbox tui

KEY BINDINGS:
    j/k, up/down  Move the cursor
    enter, r      Mark the selected notification as read
    R             Mark every notification as read
    d             Delete the selected notification
    D             Delete every notification (asks first)
    m             Load the next page
    f             Cycle the read filter: all, unread, read
    u             Toggle listing unread notifications first
    g             Refresh the current page and unread count
    q, ctrl+c     Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.TUI(cmd.Context())
		},
	}
}

var tuiCmd = NewTUICmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(tuiCmd)
}
