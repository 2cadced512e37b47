package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/cinema-service/internal/api/http/handlers"
	"github.com/spec-kit/cinema-service/internal/auth"
	"github.com/spec-kit/cinema-service/internal/config"
	"github.com/spec-kit/cinema-service/internal/domain"
	"github.com/spec-kit/cinema-service/internal/observability"
	"github.com/spec-kit/cinema-service/internal/repository"
	"github.com/spec-kit/cinema-service/internal/service"
	"github.com/spec-kit/cinema-service/internal/worker"
)

type stubUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (s *stubUsers) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type testServer struct {
	app     *fiber.App
	users   *stubUsers
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	srv := &testServer{
		users:   &stubUsers{users: make(map[string]*domain.User)},
		metrics: observability.NewMetrics(),
	}

	pool := worker.NewHashPool(2)
	t.Cleanup(pool.Close)

	authService, err := service.NewAuthService(config.AuthConfig{
		JWTSecret:       "http-test-secret-0123456789abcdef0123",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Argon2Time:      1,
		Argon2MemoryKiB: 64,
		Argon2Threads:   1,
	}, service.AuthDependencies{
		UserRepo: srv.users,
		HashPool: pool,
		Metrics:  srv.metrics,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	srv.app = fiber.New()
	RegisterMiddlewares(srv.app, zap.NewNop(), srv.metrics, 5*time.Second)
	RegisterRoutes(srv.app, RouteConfig{
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenValidator(), zap.NewNop(), srv.metrics),
	})
	return srv
}

func (s *testServer) seed(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hasher := auth.NewPasswordHasher(auth.WithArgon2Time(1), auth.WithArgon2Memory(64), auth.WithArgon2Threads(1))
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	user := &domain.User{Name: "Seed", Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *testServer) do(t *testing.T, method, path, body, authorization string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *testServer) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	status, raw := s.do(t, fiber.MethodPost, "/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(raw, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair.AccessToken, pair.RefreshToken
}

func errorBody(t *testing.T, raw []byte) (string, string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Error.Code, body.Error.Message
}

func TestLoginRefreshScenario(t *testing.T) {
	srv := newTestServer(t)
	user := srv.seed(t, "viewer@cinema.test", "popcorn-42", domain.RoleUser)

	access, refresh := srv.login(t, "viewer@cinema.test", "popcorn-42")

	status, raw := srv.do(t, fiber.MethodGet, "/me", "", access)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var me map[string]string
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, user.ID, me["userId"])
	assert.Equal(t, "user", me["role"])

	status, raw = srv.do(t, fiber.MethodPut, "/refresh", `{"refreshToken":"`+refresh+`"}`, "")
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var newAccess string
	require.NoError(t, json.Unmarshal(raw, &newAccess))
	require.NotEmpty(t, newAccess)

	status, _ = srv.do(t, fiber.MethodGet, "/me", "", "Bearer "+newAccess)
	assert.Equal(t, fiber.StatusOK, status)

	status, raw = srv.do(t, fiber.MethodPut, "/refresh", `{"refreshToken":"`+access+`"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	code, msg := errorBody(t, raw)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.Equal(t, auth.UnauthorizedMessage, msg)
}

func TestLogin_FailuresShareOneResponse(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "viewer@cinema.test", "popcorn-42", domain.RoleUser)

	wrongStatus, wrongBody := srv.do(t, fiber.MethodPost, "/login", `{"email":"viewer@cinema.test","password":"nachos"}`, "")
	unknownStatus, unknownBody := srv.do(t, fiber.MethodPost, "/login", `{"email":"ghost@cinema.test","password":"nachos"}`, "")

	assert.Equal(t, fiber.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.JSONEq(t, string(wrongBody), string(unknownBody))
}

func TestLogin_InvalidBodies(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"malformed json":   `{"email":`,
		"missing password": `{"email":"viewer@cinema.test"}`,
		"bad email":        `{"email":"not-an-email","password":"x"}`,
		"empty object":     `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, raw := srv.do(t, fiber.MethodPost, "/login", body, "")
			assert.Equal(t, fiber.StatusUnprocessableEntity, status)
			code, _ := errorBody(t, raw)
			assert.Equal(t, "VALIDATION_FAILED", code)
		})
	}
}

func TestRefresh_Rejections(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, fiber.MethodPut, "/refresh", `{}`, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, raw := srv.do(t, fiber.MethodPut, "/refresh", `{"refreshToken":"a.b.c"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	code, _ := errorBody(t, raw)
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestProtectedRoutes(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "viewer@cinema.test", "popcorn-42", domain.RoleUser)
	srv.seed(t, "boss@cinema.test", "projector-9", domain.RoleAdmin)

	userAccess, userRefresh := srv.login(t, "viewer@cinema.test", "popcorn-42")
	adminAccess, _ := srv.login(t, "boss@cinema.test", "projector-9")

	status, _ := srv.do(t, fiber.MethodGet, "/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = srv.do(t, fiber.MethodGet, "/me", "", userRefresh)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = srv.do(t, fiber.MethodGet, "/admin/ping", "", userAccess)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = srv.do(t, fiber.MethodGet, "/admin/ping", "", adminAccess)
	assert.Equal(t, fiber.StatusOK, status)

	rejections := srv.metrics.Snapshot().Rejections
	assert.EqualValues(t, 1, rejections["missing_token"])
	assert.EqualValues(t, 1, rejections["wrong_token_type"])
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	status, raw := srv.do(t, fiber.MethodPost, "/register", `{"name":"Ada","email":"ada@cinema.test","password":"long-enough"}`, "")
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var created map[string]string
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "user", created["role"])
	assert.NotContains(t, string(raw), "password")

	srv.login(t, "ada@cinema.test", "long-enough")

	status, raw = srv.do(t, fiber.MethodPost, "/register", `{"name":"Ada","email":"ADA@cinema.test","password":"long-enough"}`, "")
	assert.Equal(t, fiber.StatusConflict, status)
	code, _ := errorBody(t, raw)
	assert.Equal(t, "CONFLICT", code)

	status, _ = srv.do(t, fiber.MethodPost, "/register", `{"name":"Ada","email":"ada2@cinema.test","password":"short"}`, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	status, raw := srv.do(t, fiber.MethodGet, "/showtimes", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	code, _ := errorBody(t, raw)
	assert.Equal(t, "NOT_FOUND", code)
}
