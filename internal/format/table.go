package format

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// TableColumn is one column of the table output.
type TableColumn struct {
	Name      string
	Extractor func(domain.Notification) string
}

// TableFormatter renders notifications as a lipgloss table.
type TableFormatter struct {
	columns     []TableColumn
	headerStyle lipgloss.Style
	unreadStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// DefaultColumns are the columns of a new TableFormatter.
func DefaultColumns() []TableColumn {
	return []TableColumn{
		{Name: "", Extractor: marker},
		{Name: "ID", Extractor: func(n domain.Notification) string { return n.ID }},
		{Name: "Date", Extractor: displayDate},
		{Name: "Type", Extractor: func(n domain.Notification) string { return n.Event.Type }},
		{Name: "Message", Extractor: func(n domain.Notification) string { return truncate(n.Text(), 48) }},
	}
}

// NewTableFormatter creates a table formatter with DefaultColumns.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		columns:     DefaultColumns(),
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")).Padding(0, 1),
		unreadStyle: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cellStyle:   lipgloss.NewStyle().Padding(0, 1),
	}
}

// WithColumns appends custom columns.
func (f *TableFormatter) WithColumns(columns ...TableColumn) *TableFormatter {
	f.columns = append(f.columns, columns...)
	return f
}

// FormatNotifications writes nothing for an empty list.
func (f *TableFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		return nil
	}

	headers := make([]string, len(f.columns))
	for i, col := range f.columns {
		headers[i] = col.Name
	}
	rows := make([][]string, len(notifications))
	for r, n := range notifications {
		row := make([]string, len(f.columns))
		for c, col := range f.columns {
			row[c] = col.Extractor(n)
		}
		rows[r] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row >= 0 && row < len(notifications) && !notifications[row].Read:
				return f.unreadStyle
			default:
				return f.cellStyle
			}
		})

	_, err := fmt.Fprintln(writer, t.Render())
	return err
}
