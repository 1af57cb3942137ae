package app

import "errors"

// ErrNotSignedIn is returned when no user matches the configured role.
var ErrNotSignedIn = errors.New("not signed in for this role: run `motinbox login` or set role and user_id")

// ErrHeadless is returned by watch when no socket_url is configured.
var ErrHeadless = errors.New("no push endpoint configured: set socket_url")
