package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/cinema-service/internal/auth"
	"github.com/spec-kit/cinema-service/internal/auth/hashparams"
	"github.com/spec-kit/cinema-service/internal/config"
	"github.com/spec-kit/cinema-service/internal/domain"
	"github.com/spec-kit/cinema-service/internal/events"
	"github.com/spec-kit/cinema-service/internal/observability"
	"github.com/spec-kit/cinema-service/internal/repository"
	"github.com/spec-kit/cinema-service/internal/worker"
)

// ErrLoginThrottled is returned while an email is locked out after repeated failures.
var ErrLoginThrottled = errors.New("too many failed login attempts")

// AuthService coordinates registration, login and refresh flows.
type AuthService struct {
	users     repository.UserRepository
	attempts  repository.LoginAttemptRepository
	hasher    *auth.PasswordHasher
	hashPool  *worker.HashPool
	issuer    *auth.TokenIssuer
	validator *auth.TokenValidator
	events    events.Dispatcher
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time

	maxAttempts int
	lockout     time.Duration

	// decoyHash is verified against when the email is unknown so that both
	// failure paths cost the same.
	decoyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	LoginAttemptRepo repository.LoginAttemptRepository
	HashPool         *worker.HashPool
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	// Clock overrides time.Now for token timestamps.
	Clock func() time.Time
}

// NewAuthService builds the signing key, token codec, issuer, validator and
// password hasher from cfg. The key is never retained outside the codec.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	if deps.UserRepo == nil {
		return nil, errors.New("auth service requires a user repository")
	}

	key, err := auth.NewSigningKey([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	codec, err := auth.NewTokenCodec(key)
	if err != nil {
		return nil, err
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	issuer, err := auth.NewTokenIssuer(codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, auth.WithClock(now))
	if err != nil {
		return nil, err
	}
	validator, err := auth.NewTokenValidator(codec, auth.WithClock(now))
	if err != nil {
		return nil, err
	}

	if err := hashparams.Check(cfg.Argon2Time, cfg.Argon2MemoryKiB, cfg.Argon2Threads); err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(
		auth.WithArgon2Time(uint32(cfg.Argon2Time)),
		auth.WithArgon2Memory(uint32(cfg.Argon2MemoryKiB)),
		auth.WithArgon2Threads(uint8(cfg.Argon2Threads)),
	)
	decoy, err := newDecoyHash(hasher)
	if err != nil {
		return nil, err
	}

	pool := deps.HashPool
	if pool == nil {
		pool = worker.NewHashPool(cfg.HashWorkers)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}

	return &AuthService{
		users:       deps.UserRepo,
		attempts:    deps.LoginAttemptRepo,
		hasher:      hasher,
		hashPool:    pool,
		issuer:      issuer,
		validator:   validator,
		events:      dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         now,
		maxAttempts: cfg.LoginMaxAttempts,
		lockout:     cfg.LoginLockout,
		decoyHash:   decoy,
	}, nil
}

// TokenValidator exposes the validator for the authentication middleware.
func (s *AuthService) TokenValidator() *auth.TokenValidator {
	return s.validator
}

// Register creates a user with role "user" and a freshly hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)

	var hash string
	err := s.hashPool.Run(ctx, func() error {
		h, err := s.hasher.Hash(password)
		hash = h
		return err
	})
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, "")
	return user, nil
}

// Login verifies email and password and issues an access/refresh pair. An
// unknown email and a wrong password both yield auth.ErrInvalidCredentials.
// Tokens are only issued after the lookup and the verification have completed.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	email = normalizeEmail(email)

	if !s.admitAttempt(ctx, email) {
		s.metrics.RecordLogin("throttled")
		s.publish(ctx, events.EventLoginThrottled, "", "")
		return domain.TokenPair{}, ErrLoginThrottled
	}

	cred, found, err := s.lookupCredential(ctx, email)
	if err != nil {
		return domain.TokenPair{}, err
	}

	var match bool
	if err := s.hashPool.Run(ctx, func() error {
		match = s.hasher.Verify(password, cred.PasswordHash)
		return nil
	}); err != nil {
		return domain.TokenPair{}, err
	}

	if !found || !match {
		s.metrics.RecordLogin("invalid_credentials")
		s.publish(ctx, events.EventLoginFailed, "", auth.Kind(auth.ErrInvalidCredentials))
		return domain.TokenPair{}, auth.ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(cred.UserID, cred.Role)
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.resetAttempts(ctx, email)
	s.metrics.RecordLogin("success")
	s.publish(ctx, events.EventLoginSucceeded, cred.UserID, "")
	return pair, nil
}

// lookupCredential returns the stored credential for email. An unknown email
// yields the decoy credential with found=false so the caller still verifies.
func (s *AuthService) lookupCredential(ctx context.Context, email string) (domain.Credential, bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Credential{PasswordHash: s.decoyHash}, false, nil
	}
	if err != nil {
		return domain.Credential{}, false, fmt.Errorf("lookup credential: %w", err)
	}
	return user.Credential(), true, nil
}

// Refresh exchanges a valid refresh token for a new access token. The role is
// read from the user store since refresh tokens carry none. The refresh token
// itself is neither rotated nor revoked and stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.validator.ValidateRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%w: subject no longer exists", auth.ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("lookup credential: %w", err)
	}

	token, err := s.issuer.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return "", err
	}

	s.publish(ctx, events.EventAccessTokenRefreshed, user.ID, "")
	return token, nil
}

// admitAttempt counts the attempt before any verification and admits it while
// the count since the last success stays within maxAttempts. Counting first
// with a single INCR keeps concurrent guesses from all slipping past the
// limit. Limiter errors admit the attempt.
func (s *AuthService) admitAttempt(ctx context.Context, email string) bool {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return true
	}
	attempts, err := s.attempts.RecordAttempt(ctx, email, s.lockout)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	return attempts <= int64(s.maxAttempts)
}

func (s *AuthService) resetAttempts(ctx context.Context, email string) {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return
	}
	if err := s.attempts.Reset(ctx, email); err != nil {
		s.logger.Warn("reset login attempts", zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID, reason string) {
	err := s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("publish auth event", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func newDecoyHash(hasher *auth.PasswordHasher) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: decoy password: %v", auth.ErrHashingFault, err)
	}
	return hasher.Hash(hex.EncodeToString(buf))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
