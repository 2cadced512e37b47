package auth

import (
	"errors"
	"fmt"
	"time"
)

// TokenValidator verifies a token and enforces expiry and type. Expiry and type
// are only inspected once the signature has been accepted.
type TokenValidator struct {
	codec *TokenCodec
	now   func() time.Time
}

// NewTokenValidator builds a validator on top of codec.
func NewTokenValidator(codec *TokenCodec, opts ...Option) (*TokenValidator, error) {
	if codec == nil {
		return nil, errors.New("token validator requires a codec")
	}
	o := buildOptions(opts)
	return &TokenValidator{codec: codec, now: o.now}, nil
}

// Validate returns the claims of token if it is authentic, unexpired and of type expected.
func (v *TokenValidator) Validate(token string, expected TokenType) (*Claims, error) {
	claims, err := v.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	if !v.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: at %s", ErrExpired, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}
	if claims.Type != expected {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongTokenType, expected, claims.Type)
	}
	return claims, nil
}

// ValidateAccess validates token as an access token.
func (v *TokenValidator) ValidateAccess(token string) (AccessClaims, error) {
	claims, err := v.Validate(token, TokenTypeAccess)
	if err != nil {
		return AccessClaims{}, err
	}
	return claims.Access()
}

// ValidateRefresh validates token as a refresh token.
func (v *TokenValidator) ValidateRefresh(token string) (RefreshClaims, error) {
	claims, err := v.Validate(token, TokenTypeRefresh)
	if err != nil {
		return RefreshClaims{}, err
	}
	return claims.Refresh()
}
