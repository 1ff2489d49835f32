package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionKeyPrefix = "session:"

// DefaultSessionTTL used when no TTL is configured.
const DefaultSessionTTL = 12 * time.Hour

// AuthService password login and cookie sessions.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	// Resolve returns the current account behind token. Role changes apply to live sessions.
	Resolve(ctx context.Context, token string) (*domain.User, error)
	SessionTTL() time.Duration
}

// Session an issued login.
type Session struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

type authService struct {
	users  repository.UsersRepository
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewAuthService(users repository.UsersRepository, kv store.KV, ttl time.Duration, logger *zap.Logger) AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &authService{users: users, kv: kv, ttl: ttl, logger: logger}
}

func errInvalidCredentials() error {
	return &domain.AuthenticationError{Message: "invalid username or password"}
}

func (s *authService) SessionTTL() time.Duration { return s.ttl }

func (s *authService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, domain.NewValidationError("", "username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.Warn("User login failed", zap.String("username", username), zap.String("reason", "unknown_user"))
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.Warn("User login failed", zap.String("username", username), zap.String("reason", "bad_password"))
		return nil, errInvalidCredentials()
	}

	token := uuid.NewString()
	if err := s.kv.Set(ctx, sessionKeyPrefix+token, user.ID, s.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return &Session{Token: token, User: *user, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.kv.Del(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, &domain.AuthenticationError{Message: "login required"}
	}
	userID, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, &domain.AuthenticationError{Message: "session expired"}
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			_ = s.kv.Del(ctx, sessionKeyPrefix+token)
			return nil, &domain.AuthenticationError{Message: "session expired"}
		}
		return nil, err
	}
	return user, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
