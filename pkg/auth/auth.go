package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"community-recycle-tracker/pkg/config"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"go.uber.org/fx"
)

var Module = fx.Module("auth", fx.Provide(NewTokens))

const (
	RoleRecycler  = "recycler"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"

	minSecretLen = 32
	leeway       = 30 * time.Second
)

var ErrInvalidToken = errors.New("invalid token")

// Session is the authenticated caller, derived from verified claims.
type Session struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

type claims struct {
	jwt.Claims
	Role string `json:"role"`
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg *config.Config) (*Tokens, error) {
	if len(cfg.Auth.JWTSecret) < minSecretLen {
		return nil, fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretLen)
	}

	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Tokens{
		key:    []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue is used by the seed command and tests. Production tokens come from
// the identity provider sharing the same secret.
func (t *Tokens) Issue(subject, role string) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: t.key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", err
	}

	now := t.now()
	c := claims{
		Claims: jwt.Claims{
			Subject:  subject,
			Issuer:   t.issuer,
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: role,
	}

	return jwt.Signed(signer).Claims(c).Serialize()
}

func (t *Tokens) Verify(raw string) (*Session, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var c claims
	if err := tok.Claims(t.key, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := c.ValidateWithLeeway(jwt.Expected{Issuer: t.issuer, Time: t.now()}, leeway); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	switch c.Role {
	case RoleRecycler, RoleOrganizer, RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}

	s := &Session{Subject: c.Subject, Role: c.Role}
	if c.Expiry != nil {
		s.ExpiresAt = c.Expiry.Time()
	}
	return s, nil
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
