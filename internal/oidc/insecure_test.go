package oidc

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestInsecureVerifier_ParsesClaims(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                "sub-123",
		"preferred_username": "alice",
		"email":              "a@x.com",
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	v := NewInsecureVerifier()
	parsed, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, parsed.Claims(&claims))
	require.Equal(t, "sub-123", claims["sub"])
	require.Equal(t, "alice", claims["preferred_username"])
	require.Equal(t, "a@x.com", claims["email"])
}

func TestInsecureVerifier_TypedClaims(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "sub-123",
		"email": "a@x.com",
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	v := NewInsecureVerifier()
	parsed, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
	}
	require.NoError(t, parsed.Claims(&claims))
	require.Equal(t, "sub-123", claims.Subject)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestInsecureVerifier_RejectsMalformedToken(t *testing.T) {
	v := NewInsecureVerifier()

	_, err := v.Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)

	_, err = v.Verify(context.Background(), "a.!!!notbase64!!!.c")
	require.Error(t, err)
}
