package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength shortest accepted password.
const MinPasswordLength = 6

// UserService account management. Admins manage door-users; admin and main-admin
// accounts are managed by main-admins only.
type UserService interface {
	ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error)
	CreateUser(ctx context.Context, actor *domain.User, req CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, actor *domain.User, userID string, req UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.User, userID string) error
	// CreateMainAdmin is open to anyone while no main-admin exists, then main-admin only.
	CreateMainAdmin(ctx context.Context, actor *domain.User, username, password string) (*domain.User, error)
	// EnsureMainAdmin creates the account when no main-admin exists yet; otherwise it does nothing.
	EnsureMainAdmin(ctx context.Context, username, password string) (bool, error)
}

// CreateUserRequest new account.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Door     string `json:"door"`
}

// UpdateUserRequest nil fields stay unchanged.
type UpdateUserRequest struct {
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Door     *string `json:"door"`
}

type userService struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

func NewUserService(users repository.UsersRepository, logger *zap.Logger) UserService {
	return &userService{users: users, logger: logger}
}

// canManage reports whether actor may create, modify or delete accounts of role target.
func canManage(actor *domain.User, target domain.Role) error {
	if actor == nil {
		return &domain.AuthenticationError{Message: "login required"}
	}
	required := domain.RoleMainAdmin
	if target == domain.RoleDoorUser {
		required = domain.RoleAdmin
	}
	if !actor.Role.AtLeast(required) {
		return &domain.AuthorizationError{Required: required, Actual: actor.Role}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func parseRoleField(raw string) (domain.Role, error) {
	role, err := domain.ParseRole(raw)
	if err != nil {
		return "", domain.NewValidationError("role", err.Error())
	}
	return role, nil
}

// ListUsers admins see every account.
func (s *userService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := canManage(actor, domain.RoleDoorUser); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

func (s *userService) CreateUser(ctx context.Context, actor *domain.User, req CreateUserRequest) (*domain.User, error) {
	username := normalizeUsername(req.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}
	if req.Role == "" {
		req.Role = string(domain.RoleDoorUser)
	}
	role, err := parseRoleField(req.Role)
	if err != nil {
		return nil, err
	}
	if err := canManage(actor, role); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	return s.create(ctx, username, req.Password, role, strings.TrimSpace(req.Door), actor.Username)
}

func (s *userService) create(ctx context.Context, username, password string, role domain.Role, door, createdBy string) (*domain.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, PasswordHash: hash, Role: role}
	if role == domain.RoleDoorUser {
		user.Door = door
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("username", username),
		zap.String("role", string(role)),
		zap.String("created_by", createdBy),
	)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *domain.User, userID string, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := canManage(actor, user.Role); err != nil {
		return nil, err
	}

	if req.Role != nil {
		role, err := parseRoleField(*req.Role)
		if err != nil {
			return nil, err
		}
		if err := canManage(actor, role); err != nil {
			return nil, err
		}
		if user.Role == domain.RoleMainAdmin && role != domain.RoleMainAdmin {
			if err := s.ensureNotLastMainAdmin(ctx); err != nil {
				return nil, err
			}
		}
		user.Role = role
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Door != nil {
		user.Door = strings.TrimSpace(*req.Door)
	}
	if user.Role != domain.RoleDoorUser {
		user.Door = ""
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User updated",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("updated_by", actor.Username),
	)
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := canManage(actor, user.Role); err != nil {
		return err
	}
	if actor.ID == user.ID {
		return &domain.ConflictError{Message: "cannot delete your own account"}
	}
	if user.Role == domain.RoleMainAdmin {
		if err := s.ensureNotLastMainAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("User deleted",
		zap.String("user_id", userID),
		zap.String("deleted_by", actor.Username),
	)
	return nil
}

func (s *userService) ensureNotLastMainAdmin(ctx context.Context) error {
	n, err := s.users.CountByRole(ctx, domain.RoleMainAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return &domain.ConflictError{Message: "at least one main-admin must remain"}
	}
	return nil
}

func (s *userService) CreateMainAdmin(ctx context.Context, actor *domain.User, username, password string) (*domain.User, error) {
	n, err := s.users.CountByRole(ctx, domain.RoleMainAdmin)
	if err != nil {
		return nil, err
	}
	createdBy := "bootstrap"
	if n > 0 {
		if err := canManage(actor, domain.RoleMainAdmin); err != nil {
			return nil, err
		}
		createdBy = actor.Username
	}

	username = normalizeUsername(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return s.create(ctx, username, password, domain.RoleMainAdmin, "", createdBy)
}

func (s *userService) EnsureMainAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.users.CountByRole(ctx, domain.RoleMainAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateMainAdmin(ctx, nil, username, password); err != nil {
		return false, err
	}
	return true, nil
}
