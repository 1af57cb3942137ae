// Package render draws the rows, header and footer of the interactive inbox.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/notice"
)

const (
	readWidth            = 2
	typeWidth            = 22
	ageWidth             = 5
	spacesBetweenColumns = 6
	defaultMessageWidth  = 50
	minMessageWidth      = 10
)

// HeaderState defines the inputs needed to render the title line.
type HeaderState struct {
	Role    domain.Role
	Unread  int
	Loaded  int
	HasMore bool
	Loading bool
	Width   int
	// View describes the active view settings, e.g. "unread only".
	View string
}

// RowState defines the inputs needed to render a notification row.
type RowState struct {
	Notification domain.Notification
	Width        int
	Selected     bool
	Now          time.Time
}

// FooterState defines the inputs needed to render the footer.
type FooterState struct {
	ConfirmClear bool
	HasMore      bool
	Notice       *notice.Message
}

// Title renders the role, unread counter and paging state.
func Title(state HeaderState) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Cyan)))
	text := fmt.Sprintf("%s inbox: %d unread, %d loaded", state.Role, state.Unread, state.Loaded)
	if state.HasMore {
		text += " (more available)"
	}
	if state.View != "" {
		text += " [" + state.View + "]"
	}
	if state.Loading {
		text += " loading..."
	}
	return style.Render(text)
}

// Header renders the column header.
func Header(width int) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		readWidth, "",
		typeWidth, "TYPE",
		messageWidth(width), "MESSAGE",
		ageWidth, "AGE",
	)
	return headerStyle.Render(header)
}

// Row renders a single notification row. Unread rows are bold.
func Row(state RowState) string {
	rowStyle := lipgloss.NewStyle()
	if !state.Notification.Read {
		rowStyle = rowStyle.Bold(true)
	}
	if state.Selected {
		rowStyle = rowStyle.Background(lipgloss.Color(ansiColorNumber(colors.Blue))).Foreground(lipgloss.Color("0"))
	}

	row := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		readWidth, readIcon(state.Notification.Read),
		typeWidth, truncate(state.Notification.Event.Type, typeWidth),
		messageWidth(state.Width), truncate(state.Notification.Text(), messageWidth(state.Width)),
		ageWidth, age(state.Notification.CreatedTime(), state.Now),
	)
	return rowStyle.Render(row)
}

// Empty renders the placeholder shown when the inbox has no notifications.
func Empty(skipped bool) string {
	text := "No notifications found"
	if skipped {
		text = "Not signed in for this role"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(text)
}

// Footer renders the key help, or the clear confirmation prompt, followed
// by the current notice.
func Footer(state FooterState) string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var help []string
	if state.ConfirmClear {
		help = append(help, "Delete all notifications? y: yes", "n/ESC: no")
	} else {
		help = append(help, "j/k: move", "r: read", "R: read all", "d: delete", "D: delete all", "f: filter", "u: unread first")
		if state.HasMore {
			help = append(help, "m: more")
		}
		help = append(help, "g: reload", "q: quit")
	}
	footer := helpStyle.Render(strings.Join(help, "  |  "))
	if state.Notice != nil {
		footer += "\n" + Notice(*state.Notice)
	}
	return footer
}

// Notice renders one notice with the color of its type.
func Notice(m notice.Message) string {
	color := colors.Blue
	prefix := ""
	switch m.Type {
	case notice.TypeError:
		color, prefix = colors.Red, "Error: "
	case notice.TypeWarning:
		color, prefix = colors.Yellow, "Warning: "
	case notice.TypeSuccess:
		color, prefix = colors.Green, "✓ "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(color))).Render(prefix + m.Text)
}

func messageWidth(width int) int {
	w := width - readWidth - typeWidth - ageWidth - spacesBetweenColumns
	if width == 0 || w < minMessageWidth {
		return defaultMessageWidth
	}
	return w
}

func readIcon(read bool) string {
	if read {
		return "○"
	}
	return "●"
}

func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}

func age(created, now time.Time) string {
	if created.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}

	duration := now.Sub(created)
	if duration < 0 {
		duration = 0
	}

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	}
	return fmt.Sprintf("%dd", int(duration.Hours()/24))
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
