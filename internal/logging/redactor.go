package logging

import (
	"regexp"
	"strings"
)

// Redacted replaces sensitive values in log entries.
const Redacted = "[REDACTED]"

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// A JWT is three base64url segments and its header always starts with "eyJ".
	jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
)

// redactor redacts sensitive values in log key-value pairs.
type redactor struct {
	sensitiveWords map[string]bool
}

func newRedactor() *redactor {
	words := []string{"secret", "password", "token", "key", "auth", "authorization", "credential", "bearer"}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact walks flattened key-value pairs. Values of sensitive keys are
// replaced, and bearer tokens or JWTs embedded in any string value are
// masked. The input slice is not modified.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if r.isSensitive(key) {
			result[i+1] = Redacted
			continue
		}
		switch v := result[i+1].(type) {
		case string:
			result[i+1] = redactString(v)
		case error:
			if masked := redactString(v.Error()); masked != v.Error() {
				result[i+1] = masked
			}
		}
	}
	return result
}

// isSensitive reports whether key contains a sensitive word as a separate
// segment. Segments are split on non-alphanumeric characters.
func (r *redactor) isSensitive(key string) bool {
	for _, part := range nonAlphanumeric.Split(strings.ToLower(key), -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}

// redactString masks JWTs inside s, e.g. a socket URL carrying ?token=eyJ...
func redactString(s string) string {
	if !strings.Contains(s, "eyJ") {
		return s
	}
	return jwtPattern.ReplaceAllString(s, Redacted)
}
