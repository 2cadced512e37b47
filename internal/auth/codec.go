package auth

import (
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs claims into HS256 JWS compact tokens and verifies them back.
// Verify is the trust boundary: claims it returns are authentic. Expiry and type
// are left to TokenValidator.
type TokenCodec struct {
	key    SigningKey
	method jwt.SigningMethod
	parser *jwt.Parser
}

// NewTokenCodec builds a codec around key.
func NewTokenCodec(key SigningKey) (*TokenCodec, error) {
	if key.IsZero() {
		return nil, errors.New("token codec requires a signing key")
	}
	method := jwt.SigningMethodHS256
	return &TokenCodec{
		key:    key,
		method: method,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Sign serializes claims and appends the signature.
func (c *TokenCodec) Sign(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature of token and decodes its claims.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	claims := &Claims{}
	if _, err := c.parser.ParseWithClaims(token, claims, c.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := claims.wellFormed(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != c.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
	return c.key.secret, nil
}
