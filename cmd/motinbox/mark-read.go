package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
)

type markReadClient interface {
	MarkRead(ctx context.Context, ids []string) error
	MarkAllRead(ctx context.Context) error
}

// NewMarkReadCmd creates the mark-read command with explicit dependencies.
func NewMarkReadCmd(client markReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkReadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "mark-read <id>...",
		Short: "Mark notifications as read",
		Long: `Mark one or more notifications as read by ID.

USAGE:
    motinbox mark-read <id>...

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.MarkRead(cmd.Context(), args)
		},
	}
}

// NewMarkAllReadCmd creates the mark-all-read command with explicit dependencies.
func NewMarkAllReadCmd(client markReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkAllReadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "mark-all-read",
		Short: "Mark every notification as read",
		Long: `Mark every notification of your inbox as read.

USAGE:
    motinbox mark-all-read

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.MarkAllRead(cmd.Context())
		},
	}
}

var (
	markReadCmd    = NewMarkReadCmd(appClient)
	markAllReadCmd = NewMarkAllReadCmd(appClient)
)

func init() {
	cmd.RootCmd.AddCommand(markReadCmd, markAllReadCmd)
}
