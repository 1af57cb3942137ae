// Package auth resolves the current user from configuration and the API token.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Session is the resolved auth context. A nil User means unauthenticated.
type Session struct {
	User  *domain.User
	Token string
}

// Authenticated reports whether the session has a user.
func (s Session) Authenticated() bool {
	return s.User != nil
}

var (
	idClaims   = []string{"id", "user_id", "sub"}
	roleClaims = []string{"type", "role"}
)

// Claims holds the identity fields read from a token.
type Claims struct {
	UserID string
	Role   string
}

// ParseClaims reads the identity claims of token without verifying its
// signature. The server verifies the token on every request.
func ParseClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	return Claims{
		UserID: firstClaim(claims, idClaims),
		Role:   firstClaim(claims, roleClaims),
	}, nil
}

func firstClaim(claims jwt.MapClaims, keys []string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// Resolve builds the session for token. Explicit userID and role values
// win over token claims. Without a token the session is unauthenticated.
func Resolve(token, userID, role string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, nil
	}

	if userID == "" || role == "" {
		claims, err := ParseClaims(token)
		if err != nil {
			return Session{Token: token}, err
		}
		if userID == "" {
			userID = claims.UserID
		}
		if role == "" {
			role = claims.Role
		}
	}
	if userID == "" {
		return Session{Token: token}, errors.New("no user id in configuration or token")
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return Session{Token: token}, err
	}
	return Session{User: &domain.User{ID: userID, Type: parsed}, Token: token}, nil
}
