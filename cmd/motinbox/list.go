package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/motinbox/cmd"
	"github.com/cristianoliveira/motinbox/internal/app"
	"github.com/cristianoliveira/motinbox/internal/format"
	"github.com/cristianoliveira/motinbox/internal/search"
)

type listClient interface {
	List(ctx context.Context, opts app.ListOptions, w io.Writer) error
}

const listCommandLong = `List notifications of your inbox.

USAGE:
    motinbox list [OPTIONS]

OPTIONS:
    --pages <n>          Load the first n pages (default 1)
    --all                Load every page
    --type <event>       Only show one event type, e.g. mot_expiry_reminder
    --filter <status>    Filter by read status: read, unread
    --newer-than <days>  Only show notifications newer than N days
    --unread-first       List unread notifications before read ones
    --search <query>     Only show notifications whose text or type matches
    --search-mode <mode> How --search matches: substring (default), regex, token
    --offline            Read the last saved snapshot instead of the server
    --format <format>    Output format: simple (default), table, compact, json
    -h, --help           Show this help`

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(client listClient) *cobra.Command {
	if client == nil {
		panic("NewListCmd: client dependency cannot be nil")
	}

	var opts app.ListOptions
	var formatName string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Long:  listCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := format.ParseFormatterType(formatName)
			if err != nil {
				return err
			}
			opts.Format = ft
			return client.List(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	listCmd.Flags().IntVar(&opts.Pages, "pages", 1, "Load the first n pages")
	listCmd.Flags().BoolVar(&opts.All, "all", false, "Load every page")
	listCmd.Flags().StringVar(&opts.Filter.Type, "type", "", "Only show one event type")
	listCmd.Flags().StringVar(&opts.Filter.ReadFilter, "filter", "", "Filter by read status: read, unread")
	listCmd.Flags().IntVar(&opts.Filter.NewerThan, "newer-than", 0, "Only show notifications newer than N days")
	listCmd.Flags().BoolVar(&opts.UnreadFirst, "unread-first", false, "List unread notifications first")
	listCmd.Flags().StringVar(&opts.Search, "search", "", "Only show notifications matching the query")
	listCmd.Flags().StringVar(&opts.SearchMode, "search-mode", search.ModeSubstring, "Search mode: substring, regex, token")
	listCmd.Flags().BoolVar(&opts.Offline, "offline", false, "Read the last saved snapshot")
	listCmd.Flags().StringVar(&formatName, "format", string(format.FormatterTypeSimple), "Output format: simple, table, compact, json")

	return listCmd
}

var listCmd = NewListCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(listCmd)
}
