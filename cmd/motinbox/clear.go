package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
	"github.com/cristianoliveira/motinbox/internal/app"
)

type clearClient interface {
	Clear(ctx context.Context, input app.ClearInput) error
}

// NewClearCmd creates the clear command with explicit dependencies.
func NewClearCmd(client clearClient) *cobra.Command {
	if client == nil {
		panic("NewClearCmd: client dependency cannot be nil")
	}

	var yes bool

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every notification",
		Long: `Delete every notification of your inbox.

USAGE:
    motinbox clear [OPTIONS]

OPTIONS:
    -y, --yes            Do not ask for confirmation
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := app.ClearInput{}
			if !yes && !allowNoConfirm() {
				input.Confirm = func() bool {
					return confirmClear(cmd.InOrStdin(), cmd.OutOrStdout())
				}
			}
			return client.Clear(cmd.Context(), input)
		},
	}

	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return clearCmd
}

// allowNoConfirm skips the prompt in CI.
func allowNoConfirm() bool {
	return os.Getenv("CI") != ""
}

// confirmClear asks the user before deleting everything. Anything but y or
// yes, including a read error, means no.
func confirmClear(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Are you sure you want to delete all notifications? (y/N): ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

var clearCmd = NewClearCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(clearCmd)
}
