package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/cinema-service/internal/domain"
)

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid reports whether t is a known token type.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// Claims is the signed payload shared by both token types.
type Claims struct {
	Type TokenType   `json:"token_type"`
	Role domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AccessClaims is the verified payload of an access token.
type AccessClaims struct {
	TokenID   string
	UserID    string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the per-request authentication context.
func (c AccessClaims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, Role: c.Role}
}

// RefreshClaims is the verified payload of a refresh token. It carries no role.
type RefreshClaims struct {
	TokenID   string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Access narrows c to an access token.
func (c *Claims) Access() (AccessClaims, error) {
	if c.Type != TokenTypeAccess {
		return AccessClaims{}, fmt.Errorf("%w: want %s, got %s", ErrWrongTokenType, TokenTypeAccess, c.Type)
	}
	return AccessClaims{
		TokenID:   c.ID,
		UserID:    c.Subject,
		Role:      c.Role,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Refresh narrows c to a refresh token.
func (c *Claims) Refresh() (RefreshClaims, error) {
	if c.Type != TokenTypeRefresh {
		return RefreshClaims{}, fmt.Errorf("%w: want %s, got %s", ErrWrongTokenType, TokenTypeRefresh, c.Type)
	}
	return RefreshClaims{
		TokenID:   c.ID,
		UserID:    c.Subject,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// wellFormed checks the structural invariants of an authentic payload.
func (c *Claims) wellFormed() error {
	switch {
	case c.Subject == "":
		return fmt.Errorf("%w: missing subject", ErrMalformed)
	case !c.Type.Valid():
		return fmt.Errorf("%w: unknown token type %q", ErrMalformed, c.Type)
	case c.IssuedAt == nil || c.ExpiresAt == nil:
		return fmt.Errorf("%w: missing timestamps", ErrMalformed)
	case !c.ExpiresAt.After(c.IssuedAt.Time):
		return fmt.Errorf("%w: expiry not after issuance", ErrMalformed)
	case c.Type == TokenTypeAccess && !c.Role.Valid():
		return fmt.Errorf("%w: access token without valid role", ErrMalformed)
	case c.Type == TokenTypeRefresh && c.Role != "":
		return fmt.Errorf("%w: refresh token carries a role", ErrMalformed)
	}
	return nil
}
