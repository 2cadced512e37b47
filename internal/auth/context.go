package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cinema-service/internal/domain"
)

const identityKey = "auth_identity"

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFrom returns the identity stored in ctx by the authentication gate.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return identity, ok
}

// IdentityFromCtx retrieves the authenticated caller of the current request.
func IdentityFromCtx(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
