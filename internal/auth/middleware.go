package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/cinema-service/internal/observability"
	apperrors "github.com/spec-kit/cinema-service/pkg/util"
)

// UnauthorizedMessage is the only text a client sees for any authentication failure.
const UnauthorizedMessage = "authentication failed"

// AuthMiddleware gates protected routes on a valid access token.
type AuthMiddleware struct {
	tokens  *TokenValidator
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthMiddleware constructs middleware. metrics may be nil.
func NewAuthMiddleware(tokens *TokenValidator, logger *zap.Logger, metrics *observability.Metrics) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger, metrics: metrics}
}

// Handle validates the Authorization header and stores the caller identity for
// the rest of the request. Every failure produces the same 401.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := extractToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return m.reject(c, ErrMissingToken)
	}

	claims, err := m.tokens.ValidateAccess(token)
	if err != nil {
		return m.reject(c, err)
	}

	identity := claims.Identity()
	c.Locals(identityKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
	return c.Next()
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, err error) error {
	kind := Kind(err)
	m.logger.Debug("request rejected",
		zap.String("reason", kind),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
	m.metrics.RecordRejection(kind)
	return apperrors.NewUnauthorized(UnauthorizedMessage)
}

// extractToken accepts both "<token>" and "Bearer <token>". A bare scheme
// carries no token.
func extractToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, "Bearer") {
		return "", false
	}
	if scheme, rest, found := strings.Cut(header, " "); found {
		if !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		header = strings.TrimSpace(rest)
	}
	if header == "" || strings.ContainsAny(header, " \t") {
		return "", false
	}
	return header, true
}
