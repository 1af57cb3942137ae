package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
)

type deleteClient interface {
	Delete(ctx context.Context, ids []string) error
}

// NewDeleteCmd creates the delete command with explicit dependencies.
func NewDeleteCmd(client deleteClient) *cobra.Command {
	if client == nil {
		panic("NewDeleteCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notifications",
		Long: `Delete one or more notifications by ID.

USAGE:
    motinbox delete <id>...

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Delete(cmd.Context(), args)
		},
	}
}

var deleteCmd = NewDeleteCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(deleteCmd)
}
