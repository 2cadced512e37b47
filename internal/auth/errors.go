package auth

import "errors"

// Error kinds produced by the authentication core. Callers match them with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrMalformed          = errors.New("token malformed")
	ErrInvalidSignature   = errors.New("token signature invalid")
	ErrExpired            = errors.New("token expired")
	ErrWrongTokenType     = errors.New("wrong token type")
	ErrHashingFault       = errors.New("password hashing fault")
)

// Kind returns a stable label for logs and metrics. It is never sent to clients.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrWrongTokenType):
		return "wrong_token_type"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrHashingFault):
		return "hashing_fault"
	default:
		return "unknown"
	}
}

// IsTokenError reports whether err is one of the token rejection kinds.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrWrongTokenType)
}
