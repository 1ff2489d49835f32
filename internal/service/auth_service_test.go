package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	auth  AuthService
	users UserService
	repo  *repository.MemoryStore
	root  *domain.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := repository.NewMemoryStore()
	users := NewUserService(repo, zap.NewNop())
	root, err := users.CreateMainAdmin(context.Background(), nil, "Root", "rootpass")
	require.NoError(t, err)
	return &authFixture{
		auth:  NewAuthService(repo, store.NewMemoryKV(), time.Hour, zap.NewNop()),
		users: users,
		repo:  repo,
		root:  root,
	}
}

func (f *authFixture) create(t *testing.T, actor *domain.User, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), actor, CreateUserRequest{
		Username: username, Password: "secret1", Role: string(role),
	})
	require.NoError(t, err)
	return u
}

func TestLoginLogoutResolve(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, " ROOT ", "rootpass")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, domain.RoleMainAdmin, sess.User.Role)

	user, err := f.auth.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "root", user.Username)

	require.NoError(t, f.auth.Logout(ctx, sess.Token))
	_, err = f.auth.Resolve(ctx, sess.Token)
	var authErr *domain.AuthenticationError
	assert.True(t, errors.As(err, &authErr))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	var authErr *domain.AuthenticationError
	_, err := f.auth.Login(ctx, "root", "wrong-password")
	assert.True(t, errors.As(err, &authErr))

	_, err = f.auth.Login(ctx, "nobody", "rootpass")
	assert.True(t, errors.As(err, &authErr))

	_, err = f.auth.Login(ctx, "", "")
	assert.True(t, domain.IsValidation(err))
}

func TestResolve_DeletedUserEndsSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	doorUser := f.create(t, f.root, "door1", domain.RoleDoorUser)

	sess, err := f.auth.Login(ctx, "door1", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.users.DeleteUser(ctx, f.root, doorUser.ID))

	_, err = f.auth.Resolve(ctx, sess.Token)
	var authErr *domain.AuthenticationError
	assert.True(t, errors.As(err, &authErr))
}

func TestCreateUser_RoleRules(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := f.create(t, f.root, "admin1", domain.RoleAdmin)
	doorUser := f.create(t, admin, "door1", domain.RoleDoorUser)

	var authzErr *domain.AuthorizationError
	_, err := f.users.CreateUser(ctx, admin, CreateUserRequest{Username: "admin2", Password: "secret1", Role: "admin"})
	assert.True(t, errors.As(err, &authzErr))

	_, err = f.users.CreateUser(ctx, doorUser, CreateUserRequest{Username: "door2", Password: "secret1", Role: "door-user"})
	assert.True(t, errors.As(err, &authzErr))

	_, err = f.users.CreateUser(ctx, admin, CreateUserRequest{Username: "door3", Password: "short", Role: "door-user"})
	assert.True(t, domain.IsValidation(err))

	_, err = f.users.CreateUser(ctx, admin, CreateUserRequest{Username: "DOOR1", Password: "secret1", Role: "door-user"})
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))

	_, err = f.users.CreateUser(ctx, admin, CreateUserRequest{Username: "x", Password: "secret1", Role: "superuser"})
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := f.create(t, f.root, "admin1", domain.RoleAdmin)
	doorUser := f.create(t, admin, "door1", domain.RoleDoorUser)

	door := "North"
	updated, err := f.users.UpdateUser(ctx, admin, doorUser.ID, UpdateUserRequest{Door: &door})
	require.NoError(t, err)
	assert.Equal(t, "North", updated.Door)

	promote := "admin"
	var authzErr *domain.AuthorizationError
	_, err = f.users.UpdateUser(ctx, admin, doorUser.ID, UpdateUserRequest{Role: &promote})
	assert.True(t, errors.As(err, &authzErr))

	updated, err = f.users.UpdateUser(ctx, f.root, doorUser.ID, UpdateUserRequest{Role: &promote})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Empty(t, updated.Door)

	password := "newsecret"
	_, err = f.users.UpdateUser(ctx, f.root, doorUser.ID, UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "door1", "newsecret")
	require.NoError(t, err)
}

func TestLastMainAdminProtected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	demote := "admin"
	_, err := f.users.UpdateUser(ctx, f.root, f.root.ID, UpdateUserRequest{Role: &demote})
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))

	err = f.users.DeleteUser(ctx, f.root, f.root.ID)
	assert.True(t, errors.As(err, &conflict))
}

func TestCreateMainAdmin_Bootstrap(t *testing.T) {
	repo := repository.NewMemoryStore()
	users := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	created, err := users.EnsureMainAdmin(ctx, "boss", "bosspass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = users.EnsureMainAdmin(ctx, "boss2", "bosspass")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = users.CreateMainAdmin(ctx, nil, "intruder", "password")
	var authErr *domain.AuthenticationError
	assert.True(t, errors.As(err, &authErr))

	boss, err := repo.GetUserByUsername(ctx, "boss")
	require.NoError(t, err)
	second, err := users.CreateMainAdmin(ctx, boss, "deputy", "password")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMainAdmin, second.Role)
}
