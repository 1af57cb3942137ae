package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
)

type watchClient interface {
	Watch(ctx context.Context, out io.Writer) error
}

// NewWatchCmd creates the watch command with explicit dependencies.
func NewWatchCmd(client watchClient) *cobra.Command {
	if client == nil {
		panic("NewWatchCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "watch",
		Short: "Watch push notifications",
		Long: `Stay connected to the push endpoint and alert on every new notification.

Each push refreshes the inbox, prints the alert, runs on-notification hooks
and shows a desktop notification. The unread counter is printed whenever it
changes. Requires socket_url.

USAGE:
    motinbox watch

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return client.Watch(ctx, cmd.OutOrStdout())
		},
	}
}

var watchCmd = NewWatchCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(watchCmd)
}
