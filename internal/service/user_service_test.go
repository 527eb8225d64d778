package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
)

func newTestUserService(t *testing.T) (*UserService, *repository.MemoryUserRepository) {
	t.Helper()

	tm, err := auth.NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	return NewUserService(users, tm, events.NewInMemoryDispatcher()), users
}

func createUser(t *testing.T, users *repository.MemoryUserRepository, name, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func strPtr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	user := createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)

	got, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)

	_, err = svc.GetProfile(context.Background(), user.ID+100)
	assertStatus(t, err, 404)
}

func TestUpdateProfile_Partial(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	user := createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)
	ctx := context.Background()

	updated, pair, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Email: strPtr("new@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", updated.Email)
	assert.Equal(t, "alice", updated.Name, "omitted fields stay untouched")
	assert.Equal(t, domain.RoleUser, updated.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestUpdateProfile_Role(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	user := createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)
	ctx := context.Background()

	// invalid role fails closed
	_, _, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Role: strPtr("superuser")})
	assertStatus(t, err, 400)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, stored.Role)

	// case-insensitive input normalizes to the canonical value
	updated, _, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Role: strPtr("admin")})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestUpdateProfile_Conflict(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)
	bob := createUser(t, users, "bob", "bob@x.com", "Passw0rd!", domain.RoleUser)

	_, _, err := svc.UpdateProfile(context.Background(), bob.ID, ProfilePatch{Name: strPtr("alice")})
	assertStatus(t, err, 409)
}

func TestDeleteSelf(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	user := createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)
	ctx := context.Background()

	err := svc.DeleteSelf(ctx, user.ID, "WrongPass1!")
	assertStatus(t, err, 401)

	require.NoError(t, svc.DeleteSelf(ctx, user.ID, "Passw0rd!"))

	_, err = users.GetByID(ctx, user.ID)
	assert.Error(t, err)
}

func TestDeleteByID(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	user := createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)
	ctx := context.Background()

	require.NoError(t, svc.DeleteByID(ctx, user.ID))

	err := svc.DeleteByID(ctx, user.ID)
	assertStatus(t, err, 404)
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService(t)
	createUser(t, users, "alice", "alice@x.com", "Passw0rd!", domain.RoleUser)
	createUser(t, users, "bob", "bob@x.com", "Passw0rd!", domain.RoleAdmin)

	all, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Name)
	assert.Equal(t, "bob", all[1].Name)
}
