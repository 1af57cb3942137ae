package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
	"github.com/cristianoliveira/motinbox/internal/app"
	"github.com/cristianoliveira/motinbox/internal/format"
)

type statusClient interface {
	Status(ctx context.Context, opts app.StatusOptions, w io.Writer) error
}

// NewStatusCmd creates the status command with explicit dependencies.
func NewStatusCmd(client statusClient) *cobra.Command {
	if client == nil {
		panic("NewStatusCmd: client dependency cannot be nil")
	}

	var formatName string
	var template string
	var offline bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the unread counter",
		Long: `Show the unread counter of your inbox.

USAGE:
    motinbox status [OPTIONS]

OPTIONS:
    --format <format>    Output format: summary (default), count, json
    --template <tmpl>    Preset (compact, detailed, count-only, badge) or a
                         template such as "{{role}}: {{unread-count}}"
    --offline            Read the last saved snapshot instead of the server
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := format.ParseStatusFormat(formatName)
			if err != nil {
				return err
			}
			return client.Status(cmd.Context(), app.StatusOptions{Format: sf, Template: template, Offline: offline}, cmd.OutOrStdout())
		},
	}

	statusCmd.Flags().StringVar(&formatName, "format", string(format.StatusFormatSummary), "Output format: summary, count, json")
	statusCmd.Flags().StringVar(&template, "template", "", "Status template or preset name")
	statusCmd.Flags().BoolVar(&offline, "offline", false, "Read the last saved snapshot")

	return statusCmd
}

var statusCmd = NewStatusCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(statusCmd)
}
