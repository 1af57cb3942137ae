package app

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/motinbox/internal/auth"
	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/credential"
)

// CredentialStore keeps the token and identity between runs.
type CredentialStore interface {
	Set(key, value string) error
	Delete(key string) error
}

// LoginInput represents login command inputs.
type LoginInput struct {
	Token  string
	UserID string
	Role   string
}

// LoginUseCase coordinates login and logout behavior.
type LoginUseCase struct {
	store CredentialStore
}

// NewLoginUseCase creates a login use-case.
func NewLoginUseCase(store CredentialStore) *LoginUseCase {
	if store == nil {
		panic("NewLoginUseCase: store dependency cannot be nil")
	}
	return &LoginUseCase{store: store}
}

// Login validates the token, resolves the user and stores all three values.
// Nothing is stored when the user cannot be resolved.
func (u *LoginUseCase) Login(input LoginInput) (auth.Session, error) {
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return auth.Session{}, fmt.Errorf("login: token is required")
	}
	session, err := auth.Resolve(token, strings.TrimSpace(input.UserID), strings.TrimSpace(input.Role))
	if err != nil {
		return auth.Session{}, fmt.Errorf("login: %w", err)
	}

	values := []struct{ key, value string }{
		{credential.TokenKey, session.Token},
		{credential.UserIDKey, session.User.ID},
		{credential.RoleKey, session.User.Type.String()},
	}
	for _, v := range values {
		if err := u.store.Set(v.key, v.value); err != nil {
			return auth.Session{}, fmt.Errorf("login: %w", err)
		}
	}
	colors.Success(fmt.Sprintf("Signed in as %s (%s)", session.User.ID, session.User.Type))
	return session, nil
}

// Logout removes every stored credential.
func (u *LoginUseCase) Logout() error {
	for _, key := range []string{credential.TokenKey, credential.UserIDKey, credential.RoleKey} {
		if err := u.store.Delete(key); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	colors.Success("Signed out")
	return nil
}
