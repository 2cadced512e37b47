package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cinema-service/internal/domain"
	apperrors "github.com/spec-kit/cinema-service/pkg/util"
)

// RequireRole must run after AuthMiddleware.Handle. It admits identities whose
// role is in allowed; with no roles listed any authenticated caller passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromCtx(c)
		if !ok {
			return apperrors.NewUnauthorized(UnauthorizedMessage)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
