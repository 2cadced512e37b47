package auth

import (
	"errors"
	"fmt"
)

// MinSigningKeyLen is the shortest HMAC secret accepted, matching the HS256 output size.
const MinSigningKeyLen = 32

// SigningKey is the process-wide HMAC secret. It is constructed once at start and
// only read afterwards. Its formatting methods never reveal the secret.
type SigningKey struct {
	secret []byte
}

// NewSigningKey copies secret into a new key.
func NewSigningKey(secret []byte) (SigningKey, error) {
	if len(secret) == 0 {
		return SigningKey{}, errors.New("signing key is empty")
	}
	if len(secret) < MinSigningKeyLen {
		return SigningKey{}, fmt.Errorf("signing key must be at least %d bytes, got %d", MinSigningKeyLen, len(secret))
	}
	buf := make([]byte, len(secret))
	copy(buf, secret)
	return SigningKey{secret: buf}, nil
}

// IsZero reports whether the key was never initialized.
func (k SigningKey) IsZero() bool {
	return len(k.secret) == 0
}

func (k SigningKey) String() string {
	return "SigningKey(redacted)"
}

func (k SigningKey) GoString() string {
	return k.String()
}

// MarshalText keeps the secret out of structured logs and encoders.
func (k SigningKey) MarshalText() ([]byte, error) {
	return []byte("redacted"), nil
}
