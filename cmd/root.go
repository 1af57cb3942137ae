package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/config"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/logging"
	"github.com/cristianoliveira/motinbox/internal/version"
)

var (
	roleFlag  string
	debugFlag bool
	quietFlag bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "motinbox",
	Short:         "Notification inbox for MOT bookings.",
	Long:          `Notification inbox for MOT bookings: list, manage and watch your driver, garage or admin notifications.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.Long)
			return
		}
		PrintHelp(cmd)
	})

	RootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Inbox to act on: driver, garage or admin (default: your account role)")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug output")
	RootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Only print errors")
}

// setup loads configuration, applies command-line overrides and starts file logging.
func setup(cmd *cobra.Command) error {
	config.Load()
	if debugFlag {
		config.Set("debug", "true")
	}
	if quietFlag {
		config.Set("quiet", "true")
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))

	if roleFlag != "" {
		if _, err := domain.ParseRole(roleFlag); err != nil {
			return err
		}
	}

	logging.SetCommand(strings.TrimSpace(cmd.CommandPath()))
	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("file logging disabled: %v", err))
	}
	return nil
}

// InboxRole returns the role selected with --role, or "" for the account role.
func InboxRole() domain.Role {
	if roleFlag == "" {
		return ""
	}
	role, err := domain.ParseRole(roleFlag)
	if err != nil {
		return ""
	}
	return role
}
