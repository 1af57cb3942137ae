package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
	"github.com/cristianoliveira/motinbox/internal/app"
)

type loginClient interface {
	Login(input app.LoginInput) error
	Logout() error
}

// NewLoginCmd creates the login command with explicit dependencies.
func NewLoginCmd(client loginClient) *cobra.Command {
	if client == nil {
		panic("NewLoginCmd: client dependency cannot be nil")
	}

	var input app.LoginInput

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long: `Store an API token in the system keyring.

The user id and role are read from the token when not given. Without
--token the token is read from standard input.

USAGE:
    motinbox login [OPTIONS]

OPTIONS:
    --token <token>      API token
    --user-id <id>       User id, when the token does not carry one
    --as <role>          Account role: driver, garage or admin
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Token == "" {
				token, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				input.Token = token
			}
			return client.Login(input)
		},
	}

	loginCmd.Flags().StringVar(&input.Token, "token", "", "API token")
	loginCmd.Flags().StringVar(&input.UserID, "user-id", "", "User id")
	loginCmd.Flags().StringVar(&input.Role, "as", "", "Account role: driver, garage or admin")

	return loginCmd
}

func readToken(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "API token: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("login: reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// NewLogoutCmd creates the logout command with explicit dependencies.
func NewLogoutCmd(client loginClient) *cobra.Command {
	if client == nil {
		panic("NewLogoutCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Long: `Remove the token, user id and role stored by login.

USAGE:
    motinbox logout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Logout()
		},
	}
}

var (
	loginCmd  = NewLoginCmd(appClient)
	logoutCmd = NewLogoutCmd(appClient)
)

func init() {
	cmd.RootCmd.AddCommand(loginCmd, logoutCmd)
}
