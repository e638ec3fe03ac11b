package auth

import (
	"context"
	"testing"
	"time"

	"community-recycle-tracker/pkg/config"

	"github.com/stretchr/testify/require"
)

func newTokens(t *testing.T, secret string) *Tokens {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = secret
	cfg.Auth.Issuer = "test"
	cfg.Auth.TokenTTL = time.Hour

	tokens, err := NewTokens(cfg)
	require.NoError(t, err)
	return tokens
}

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	tokens := newTokens(t, secret)

	raw, err := tokens.Issue("recycler-1", RoleRecycler)
	require.NoError(t, err)

	s, err := tokens.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "recycler-1", s.Subject)
	require.Equal(t, RoleRecycler, s.Role)
	require.False(t, s.IsAdmin())
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	raw, err := newTokens(t, secret).Issue("recycler-1", RoleRecycler)
	require.NoError(t, err)

	_, err = newTokens(t, "ffffffffffffffffffffffffffffffff").Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := newTokens(t, secret)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, err := tokens.Issue("recycler-1", RoleRecycler)
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	tokens := newTokens(t, secret)
	raw, err := tokens.Issue("someone", "superuser")
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := newTokens(t, secret).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokensShortSecret(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "short"
	_, err := NewTokens(cfg)
	require.Error(t, err)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := WithSession(context.Background(), &Session{Subject: "a", Role: RoleAdmin})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	require.True(t, s.IsAdmin())
}
