package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// VariableContext contains all data needed for template variable resolution.
type VariableContext struct {
	Role domain.Role

	UnreadCount int
	LoadedCount int
	ReadCount   int

	HasMore bool
	Offline bool
	SavedAt time.Time

	// Latest is the newest loaded notification, if any.
	Latest *domain.Notification
}

// NewVariableContext summarizes a loaded list.
func NewVariableContext(role domain.Role, unread int, items []domain.Notification) VariableContext {
	ctx := VariableContext{Role: role, UnreadCount: unread, LoadedCount: len(items)}
	for _, n := range items {
		if n.Read {
			ctx.ReadCount++
		}
	}
	if len(items) > 0 {
		latest := items[0]
		ctx.Latest = &latest
	}
	return ctx
}

// variables lists the template variables in help order.
var variables = []string{
	"role",
	"unread-count",
	"loaded-count",
	"read-count",
	"has-unread",
	"has-more",
	"offline",
	"saved-at",
	"latest-message",
	"latest-type",
	"latest-id",
}

// Variables returns the names of every template variable.
func Variables() []string {
	return append([]string(nil), variables...)
}

// IsVariable reports whether name is a known template variable.
func IsVariable(name string) bool {
	for _, v := range variables {
		if v == name {
			return true
		}
	}
	return false
}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	// Resolve returns the string value for a given variable name and context.
	Resolve(varName string, ctx VariableContext) (string, error)
}

type variableResolver struct{}

// NewVariableResolver creates a new variable resolver instance.
func NewVariableResolver() VariableResolver {
	return &variableResolver{}
}

// Resolve returns the string value for a variable from the context.
func (vr *variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	switch varName {
	case "role":
		return ctx.Role.String(), nil

	case "unread-count":
		return strconv.Itoa(ctx.UnreadCount), nil

	case "loaded-count":
		return strconv.Itoa(ctx.LoadedCount), nil

	case "read-count":
		return strconv.Itoa(ctx.ReadCount), nil

	case "has-unread":
		return strconv.FormatBool(ctx.UnreadCount > 0), nil

	case "has-more":
		return strconv.FormatBool(ctx.HasMore), nil

	case "offline":
		return strconv.FormatBool(ctx.Offline), nil

	case "saved-at":
		if ctx.SavedAt.IsZero() {
			return "", nil
		}
		return ctx.SavedAt.UTC().Format(time.RFC3339), nil

	// empty when nothing is loaded
	case "latest-message":
		if ctx.Latest == nil {
			return "", nil
		}
		return ctx.Latest.Text(), nil

	case "latest-type":
		if ctx.Latest == nil {
			return "", nil
		}
		return ctx.Latest.Event.Type, nil

	case "latest-id":
		if ctx.Latest == nil {
			return "", nil
		}
		return ctx.Latest.ID, nil

	default:
		return "", fmt.Errorf("unknown variable: %s", varName)
	}
}
