package search

import (
	"strings"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// TokenProvider splits the query on whitespace; every token must match at
// least one field. The tokens "read" and "unread" filter by read status.
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a new token search provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{opts: applyOptions(opts)}
}

// Match returns true if all text tokens match a field and the read status
// tokens, if any, hold.
func (p *TokenProvider) Match(n domain.Notification, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return true
	}

	readFilter, unreadFilter := false, false
	textTokens := make([]string, 0, len(tokens))
	for _, token := range tokens {
		switch strings.ToLower(token) {
		case "read":
			readFilter = true
		case "unread":
			unreadFilter = true
		default:
			if p.opts.CaseInsensitive {
				token = strings.ToLower(token)
			}
			textTokens = append(textTokens, token)
		}
	}

	// both given cancel out
	if readFilter != unreadFilter {
		if readFilter && !n.Read {
			return false
		}
		if unreadFilter && n.Read {
			return false
		}
	}

	for _, token := range textTokens {
		if !p.matchToken(n, token) {
			return false
		}
	}
	return true
}

func (p *TokenProvider) matchToken(n domain.Notification, token string) bool {
	for _, field := range p.opts.Fields {
		value := fieldValue(n, field)
		if value == "" {
			continue
		}
		if p.opts.CaseInsensitive {
			value = strings.ToLower(value)
		}
		if strings.Contains(value, token) {
			return true
		}
	}
	return false
}

// Name returns the provider name.
func (p *TokenProvider) Name() string {
	return ModeToken
}
