package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryUserRepository) {
	t.Helper()

	tm, err := auth.NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	cfg := config.Config{}
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.PasswordResetTTLMinutes = 30

	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: repository.NewMemoryPasswordResetRepository(),
		Tokens:            tm,
		Dispatcher:        events.NewInMemoryDispatcher(),
	})
	return svc, users
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperrors.ToDomainError(err).HTTPStatus)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	user, pair, err := svc.Register(context.Background(), "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	identity, err := svc.TokenManager().VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestRegister_Conflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice", "other@x.com", "Passw0rd!")
	assertStatus(t, err, 409)

	_, _, err = svc.Register(ctx, "other", "alice@x.com", "Passw0rd!")
	assertStatus(t, err, 409)
}

func TestRegister_ConflictOutranksPasswordPolicy(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	// taken name plus a policy-violating password surfaces the conflict
	_, _, err = svc.Register(ctx, "alice", "other@x.com", "weak")
	assertStatus(t, err, 409)
}

func TestRegister_PasswordPolicyCodeDistinctFromMissingField(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@x.com", "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, _, err = svc.Register(ctx, "alice", "alice@x.com", "Password1")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PASSWORD", apperrors.ToDomainError(err).Code)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc, users := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name, email, password string
	}{
		{"", "a@x.com", "Passw0rd!"},
		{"ab", "a@x.com", "Passw0rd!"},
		{"alice", "not-an-email", "Passw0rd!"},
		{"alice", "a@x.com", "short1"},
		{"alice", "a@x.com", "Password1"},
	}
	for _, tc := range cases {
		_, _, err := svc.Register(ctx, tc.name, tc.email, tc.password)
		assertStatus(t, err, 400)
	}

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected registrations must not mutate the store")
}

func TestLogin_ByNameAndEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, _, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	user, pair, err := svc.Login(ctx, "alice", "", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)

	user, _, err = svc.Login(ctx, "", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	// missing identifier or password
	_, _, err = svc.Login(ctx, "", "", "Passw0rd!")
	assertStatus(t, err, 400)
	_, _, err = svc.Login(ctx, "alice", "", "")
	assertStatus(t, err, 400)

	// wrong password
	_, _, err = svc.Login(ctx, "alice", "", "WrongPass1!")
	assertStatus(t, err, 401)

	// unknown identifier folds into 401 so account existence never leaks
	_, _, err = svc.Login(ctx, "nobody", "", "Passw0rd!")
	assertStatus(t, err, 401)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	svc, users := newTestAuthService(t)
	ctx := context.Background()
	user, pair, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	access, expiresAt, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	identity, err := svc.TokenManager().VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Name, identity.Name)

	// missing cookie value
	_, _, err = svc.Refresh(ctx, "")
	assertStatus(t, err, 400)

	// access token must not work as a refresh token
	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	assertStatus(t, err, 401)

	// deleted account cannot refresh
	require.NoError(t, users.Delete(ctx, user.ID))
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assertStatus(t, err, 401)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	user, _, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	// wrong current password
	_, err = svc.ChangePassword(ctx, user.ID, "WrongPass1!", "NewPassw0rd!")
	assertStatus(t, err, 401)

	// new password identical to the current one
	_, err = svc.ChangePassword(ctx, user.ID, "Passw0rd!", "Passw0rd!")
	assertStatus(t, err, 400)

	// new password violating policy
	_, err = svc.ChangePassword(ctx, user.ID, "Passw0rd!", "weak")
	assertStatus(t, err, 400)
	assert.Equal(t, "INVALID_PASSWORD", apperrors.ToDomainError(err).Code)

	pair, err := svc.ChangePassword(ctx, user.ID, "Passw0rd!", "NewPassw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, _, err = svc.Login(ctx, "alice", "", "Passw0rd!")
	assertStatus(t, err, 401)
	_, _, err = svc.Login(ctx, "alice", "", "NewPassw0rd!")
	assert.NoError(t, err)
}

func TestPasswordReset_Flow(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, err)

	// unknown email succeeds silently without a token
	token, err := svc.RequestPasswordReset(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, token)

	token, err = svc.RequestPasswordReset(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, token)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "NewPassw0rd!"))
	_, _, err = svc.Login(ctx, "alice", "", "NewPassw0rd!")
	require.NoError(t, err)

	// token is single use
	err = svc.ConfirmPasswordReset(ctx, token.Token, "OtherPass1!")
	assertStatus(t, err, 401)
}
