package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cinema-service/internal/api/dto"
	"github.com/spec-kit/cinema-service/internal/auth"
	"github.com/spec-kit/cinema-service/internal/repository"
	"github.com/spec-kit/cinema-service/internal/service"
	apperrors "github.com/spec-kit/cinema-service/pkg/util"
)

// AuthHandler exposes login, refresh and registration endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapAuthError(err)
	}

	return c.Status(http.StatusCreated).JSON(dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles PUT /refresh. The body is the new access token as a JSON string.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return mapAuthError(err)
	}
	return c.Status(http.StatusOK).JSON(token)
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return mapAuthError(err)
	}

	return c.Status(http.StatusCreated).JSON(dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
}

// Me handles GET /me and echoes the caller identity.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage)
	}
	return c.JSON(dto.IdentityResponse{UserID: identity.UserID, Role: string(identity.Role)})
}

// AdminPing handles GET /admin/ping; it only answers admins.
func (h *AuthHandler) AdminPing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("malformed request body", nil)
	}
	return dto.Validate(out)
}

// mapAuthError collapses every authentication failure into one 401. Other
// errors are left to the error middleware.
func mapAuthError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), auth.IsTokenError(err):
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage)
	case errors.Is(err, service.ErrLoginThrottled):
		return apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	case errors.Is(err, repository.ErrEmailTaken):
		return apperrors.NewConflict("email already registered", nil)
	default:
		return err
	}
}
