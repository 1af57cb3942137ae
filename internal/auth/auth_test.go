package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestResolveFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		wantID string
		want   domain.Role
	}{
		{"id and type", jwt.MapClaims{"id": "u-1", "type": "DRIVER"}, "u-1", domain.RoleDriver},
		{"user_id and role", jwt.MapClaims{"user_id": "g-9", "role": "garage"}, "g-9", domain.RoleGarage},
		{"numeric sub", jwt.MapClaims{"sub": float64(42), "type": "ADMIN"}, "42", domain.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Resolve(signed(t, tt.claims), "", "")
			require.NoError(t, err)
			require.True(t, s.Authenticated())
			assert.Equal(t, tt.wantID, s.User.ID)
			assert.Equal(t, tt.want, s.User.Type)
		})
	}
}

func TestResolveExplicitValuesWin(t *testing.T) {
	token := signed(t, jwt.MapClaims{"id": "u-1", "type": "DRIVER"})
	s, err := Resolve(token, "override", "garage")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "override", Type: domain.RoleGarage}, s.User)
	assert.Equal(t, token, s.Token)
}

func TestResolveOpaqueTokenNeedsExplicitValues(t *testing.T) {
	s, err := Resolve("opaque-token", "u-1", "driver")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDriver, s.User.Type)

	_, err = Resolve("opaque-token", "", "driver")
	require.Error(t, err)
}

func TestResolveWithoutToken(t *testing.T) {
	s, err := Resolve("  ", "u-1", "driver")
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User)
}

func TestResolveInvalidRole(t *testing.T) {
	token := signed(t, jwt.MapClaims{"id": "u-1", "type": "MECHANIC"})
	_, err := Resolve(token, "", "")
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}
