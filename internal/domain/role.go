package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the type of the authenticated user.
type Role string

const (
	RoleDriver Role = "DRIVER"
	RoleGarage Role = "GARAGE"
	RoleAdmin  Role = "ADMIN"
)

// GenericChannel is the push channel every role listens on.
const GenericChannel = "notification"

// ErrInvalidRole is returned when a role string is not recognized.
var ErrInvalidRole = errors.New("invalid role")

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleDriver, RoleGarage, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Slug returns the lower-case role name used in channels, paths and cache tags.
func (r Role) Slug() string {
	return strings.ToLower(string(r))
}

// Channel returns the role-specific push channel, e.g. "notification:driver".
func (r Role) Channel() string {
	return GenericChannel + ":" + r.Slug()
}

// Channels returns the channels a controller of this role subscribes to:
// the role channel followed by the generic channel.
func (r Role) Channels() []string {
	return []string{r.Channel(), GenericChannel}
}

// ParseRole parses a role case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// User is the authenticated user supplied by the auth context.
// A nil *User means unauthenticated.
type User struct {
	ID   string
	Type Role
}

// Matches reports whether the user is present and has the given role.
func (u *User) Matches(role Role) bool {
	return u != nil && u.ID != "" && u.Type == role
}
