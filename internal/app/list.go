package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/format"
	"github.com/cristianoliveira/motinbox/internal/search"
)

// ListOptions holds list parameters after flag parsing.
type ListOptions struct {
	// Pages is the number of pages to load; zero loads one page.
	Pages int
	// All loads every page.
	All         bool
	Filter      domain.FilterOptions
	Format      format.FormatterType
	UnreadFirst bool
	// Search is a free-text query matched against text and event type.
	Search string
	// SearchMode selects the search.Provider: substring, regex or token.
	SearchMode string
	// Offline reads the last saved snapshot instead of the API.
	Offline bool
}

// ListUseCase coordinates list behavior.
type ListUseCase struct {
	inbox     Inbox
	snapshots SnapshotLoader
}

// NewListUseCase creates a list use-case. snapshots may be nil when offline
// reads are not available.
func NewListUseCase(inbox Inbox, snapshots SnapshotLoader) *ListUseCase {
	if inbox == nil {
		panic("NewListUseCase: inbox dependency cannot be nil")
	}
	return &ListUseCase{inbox: inbox, snapshots: snapshots}
}

// Execute prints the notifications selected by opts.
func (u *ListUseCase) Execute(ctx context.Context, opts ListOptions, w io.Writer) error {
	filter, err := opts.Filter.ToFilter()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	provider, err := search.New(opts.SearchMode, search.WithCaseInsensitive(true))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	var items []domain.Notification
	if opts.Offline {
		items, err = u.offline(ctx)
	} else {
		items, err = u.online(ctx, opts)
	}
	if err != nil {
		return err
	}

	items = search.Filter(provider, filter.Apply(items), opts.Search)
	if len(items) == 0 {
		_, _ = fmt.Fprintf(w, "%s%s%s\n", colors.Blue, "No notifications found", colors.Reset)
		return nil
	}
	if opts.UnreadFirst {
		items = OrderUnreadFirst(items)
	}
	if err := format.NewFormatter(opts.Format).FormatNotifications(items, w); err != nil {
		return fmt.Errorf("list: formatting error: %w", err)
	}
	if !opts.Offline && !opts.All && u.inbox.HasMore() {
		colors.LogInfo("More notifications available; use --pages or --all")
	}
	return nil
}

func (u *ListUseCase) online(ctx context.Context, opts ListOptions) ([]domain.Notification, error) {
	if err := requireActive(u.inbox); err != nil {
		return nil, err
	}
	if err := u.inbox.Load(ctx); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	for loaded := 1; opts.All || loaded < opts.Pages; loaded++ {
		issued, err := u.inbox.LoadMore(ctx)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		if !issued {
			break
		}
	}
	return u.inbox.List(), nil
}

func (u *ListUseCase) offline(ctx context.Context) ([]domain.Notification, error) {
	if u.snapshots == nil {
		return nil, errors.New("list: offline snapshots are not available")
	}
	snap, err := u.snapshots.Load(ctx, u.inbox.Role())
	if errors.Is(err, domain.ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list: load snapshot: %w", err)
	}
	return snap.Items, nil
}

// OrderUnreadFirst places unread notifications before read ones, keeping
// the server order within each group.
func OrderUnreadFirst(items []domain.Notification) []domain.Notification {
	ordered := make([]domain.Notification, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].Read && ordered[j].Read
	})
	return ordered
}
