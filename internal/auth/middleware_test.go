package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/cinema-service/internal/domain"
	"github.com/spec-kit/cinema-service/internal/observability"
	apperrors "github.com/spec-kit/cinema-service/pkg/util"
)

type gateHarness struct {
	app      *fiber.App
	kit      *tokenKit
	metrics  *observability.Metrics
	logs     *observer.ObservedLogs
	handled  int
	identity domain.Identity
}

func newGateHarness(t *testing.T) *gateHarness {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	h := &gateHarness{
		kit:     newTokenKit(t, testSecret),
		metrics: observability.NewMetrics(),
		logs:    logs,
	}

	h.app = fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code, "message": de.Message}})
		},
	})
	gate := NewAuthMiddleware(h.kit.validator, zap.New(core), h.metrics)

	h.app.Get("/me", gate.Handle, func(c *fiber.Ctx) error {
		h.handled++
		identity, ok := IdentityFromCtx(c)
		fromCtx, okCtx := IdentityFrom(c.UserContext())
		if !ok || !okCtx || identity != fromCtx {
			return c.SendStatus(http.StatusInternalServerError)
		}
		h.identity = identity
		return c.SendStatus(http.StatusOK)
	})
	h.app.Get("/admin", gate.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		h.handled++
		return c.SendStatus(http.StatusOK)
	})
	h.app.Get("/unguarded", RequireRole(), func(c *fiber.Ctx) error {
		h.handled++
		return c.SendStatus(http.StatusOK)
	})
	return h
}

func (h *gateHarness) do(t *testing.T, path, authorization string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestAuthMiddleware_AcceptsRawAndBearerTokens(t *testing.T) {
	h := newGateHarness(t)
	token, err := h.kit.issuer.IssueAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	for _, header := range []string{token, "Bearer " + token, "bearer " + token, "  " + token + " "} {
		status, _ := h.do(t, "/me", header)
		assert.Equal(t, http.StatusOK, status, "header %q", header)
	}
	assert.Equal(t, 4, h.handled)
	assert.Equal(t, domain.Identity{UserID: "user-1", Role: domain.RoleUser}, h.identity)
}

func TestAuthMiddleware_RejectionsAreUniform(t *testing.T) {
	h := newGateHarness(t)

	access, err := h.kit.issuer.IssueAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)
	refresh, err := h.kit.issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)
	expired, err := h.kit.issuer.IssueAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)
	tampered := access[:len(access)-2] + "xx"

	h.kit.clock.Set(h.kit.clock.Now().Add(testAccessTTL))
	fresh, err := h.kit.issuer.IssueAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	cases := map[string]string{
		"missing":       "",
		"bare scheme":   "Bearer",
		"wrong scheme":  "Basic " + fresh,
		"extra parts":   "Bearer " + fresh + " more",
		"garbage":       "Bearer not-a-token",
		"tampered":      tampered,
		"expired":       expired,
		"refresh token": refresh,
	}

	var first map[string]any
	for name, header := range cases {
		status, body := h.do(t, "/me", header)
		assert.Equal(t, http.StatusUnauthorized, status, name)
		if first == nil {
			first = body
		}
		assert.Equal(t, first, body, "%s: body must not reveal the failure kind", name)
	}
	assert.Zero(t, h.handled, "protected handler must not run")

	rejections := h.metrics.Snapshot().Rejections
	assert.EqualValues(t, 4, rejections["missing_token"])
	assert.EqualValues(t, 1, rejections["expired"])
	assert.EqualValues(t, 1, rejections["wrong_token_type"])

	reasons := map[string]bool{}
	for _, entry := range h.logs.FilterMessage("request rejected").All() {
		reasons[entry.ContextMap()["reason"].(string)] = true
	}
	assert.True(t, reasons["expired"])
	assert.True(t, reasons["wrong_token_type"])
	for _, entry := range h.logs.All() {
		for _, v := range entry.ContextMap() {
			assert.NotEqual(t, fresh, v)
		}
	}
}

func TestRequireRole(t *testing.T) {
	h := newGateHarness(t)
	user, err := h.kit.issuer.IssueAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)
	admin, err := h.kit.issuer.IssueAccessToken("admin-1", domain.RoleAdmin)
	require.NoError(t, err)

	status, body := h.do(t, "/admin", user)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["code"])

	status, _ = h.do(t, "/admin", admin)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, "/unguarded", admin)
	assert.Equal(t, http.StatusUnauthorized, status, "role guard without gate has no identity")
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"abc", "abc", true},
		{"Bearer abc", "abc", true},
		{"BEARER   abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"bearer", "", false},
		{"Token abc", "", false},
		{"Bearer a b", "", false},
	}
	for _, tc := range cases {
		got, ok := extractToken(tc.header)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		assert.Equal(t, tc.want, got, "header %q", tc.header)
	}
}
