package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/cinema-service/internal/domain"
)

// Option configures clock-dependent components.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TokenIssuer builds access and refresh claim sets and signs them.
type TokenIssuer struct {
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer requires 0 < accessTTL < refreshTTL.
func NewTokenIssuer(codec *TokenCodec, accessTTL, refreshTTL time.Duration, opts ...Option) (*TokenIssuer, error) {
	if codec == nil {
		return nil, errors.New("token issuer requires a codec")
	}
	if accessTTL < time.Second || refreshTTL < time.Second {
		return nil, fmt.Errorf("token ttls must be at least 1s (access=%s refresh=%s)", accessTTL, refreshTTL)
	}
	if accessTTL >= refreshTTL {
		return nil, fmt.Errorf("access ttl %s must be shorter than refresh ttl %s", accessTTL, refreshTTL)
	}
	o := buildOptions(opts)
	return &TokenIssuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL, now: o.now}, nil
}

// IssueAccessToken signs a short-lived token carrying userID and role.
func (i *TokenIssuer) IssueAccessToken(userID string, role domain.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("issue access token: unknown role %q", role)
	}
	return i.issue(userID, TokenTypeAccess, role, i.accessTTL)
}

// IssueRefreshToken signs a long-lived token that only authorizes re-issuance.
func (i *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	return i.issue(userID, TokenTypeRefresh, "", i.refreshTTL)
}

// IssuePair signs both tokens. Either both are returned or neither.
func (i *TokenIssuer) IssuePair(userID string, role domain.Role) (domain.TokenPair, error) {
	access, err := i.IssueAccessToken(userID, role)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) issue(userID string, typ TokenType, role domain.Role, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue %s token: empty subject", typ)
	}
	// NumericDate has second precision; truncate so expiresAt-issuedAt is exactly ttl.
	issuedAt := i.now().Truncate(time.Second)
	claims := &Claims{
		Type: typ,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return i.codec.Sign(claims)
}
