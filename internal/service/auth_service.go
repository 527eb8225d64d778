package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// AuthService coordinates registration, login and the token lifecycle.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Tokens            *auth.TokenManager
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a new account and issues its first token pair.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.TokenPair, error) {
	if name == "" || email == "" || password == "" {
		return nil, nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if err := validateName(name); err != nil {
		return nil, nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}

	// conflict outranks the password policy: a taken name surfaces as 409
	// even when the supplied password is also invalid
	if err := s.ensureUnclaimed(ctx, name, email); err != nil {
		return nil, nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, nil, apperrors.NewInvalidPassword(err.Error())
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apperrors.NewConflict("name or email already in use", nil)
		}
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(identityOf(user))
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Payload: events.UserRegisteredPayload{Name: user.Name, Role: user.Role},
	})
	return user, pair, nil
}

// Login authenticates by name or email plus password. Unknown identifiers
// and wrong passwords both surface as 401 so account existence never leaks.
func (s *AuthService) Login(ctx context.Context, name, email, password string) (*domain.User, *domain.TokenPair, error) {
	if password == "" || (name == "" && email == "") {
		return nil, nil, apperrors.NewValidationError("password and one of name or email are required", nil)
	}

	identifier := name
	lookup := s.users.GetByName
	if name == "" {
		identifier = email
		lookup = s.users.GetByEmail
	}

	user, err := lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.publishLoginFailed(ctx, identifier, "unknown identifier")
			return nil, nil, apperrors.NewUnauthorized("incorrect credentials")
		}
		return nil, nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publishLoginFailed(ctx, identifier, "wrong password")
		return nil, nil, apperrors.NewUnauthorized("incorrect credentials")
	}

	pair, err := s.tokens.IssuePair(identityOf(user))
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, UserID: user.ID})
	return user, pair, nil
}

// Refresh verifies a refresh token and mints a new access token. The refresh
// token itself is not rotated. The subject is re-checked against the store so
// deleted accounts cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, apperrors.NewValidationError("refresh token is missing", nil)
	}

	identity, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("account no longer exists")
		}
		return "", time.Time{}, err
	}

	access, expiresAt, err := s.tokens.IssueAccessToken(identityOf(user))
	if err != nil {
		return "", time.Time{}, err
	}

	s.publish(ctx, events.Event{Type: events.EventTokenRefreshed, UserID: user.ID})
	return access, expiresAt, nil
}

// ChangePassword verifies the current password before storing the new hash,
// then issues a fresh token pair for the acting session.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (*domain.TokenPair, error) {
	if currentPassword == "" || newPassword == "" {
		return nil, apperrors.NewValidationError("password and newPassword are required", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return nil, apperrors.NewUnauthorized("incorrect credentials")
	}
	if newPassword == currentPassword {
		return nil, apperrors.NewValidationError("new password must differ from the current one", nil)
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return nil, apperrors.NewInvalidPassword(err.Error())
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(identityOf(user))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{Type: events.EventPasswordChanged, UserID: user.ID})
	return pair, nil
}

// RequestPasswordReset persists a single-use reset token for the account
// behind the email. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if tokenStr == "" {
		return apperrors.NewValidationError("token is required", nil)
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewInvalidPassword(err.Error())
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("reset token expired or already used")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account no longer exists")
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.Event{Type: events.EventPasswordChanged, UserID: user.ID})
	return s.resets.MarkUsed(ctx, token.ID)
}

// ensureUnclaimed rejects registrations whose name or email is taken. The
// store's unique constraints remain the backstop for races.
func (s *AuthService) ensureUnclaimed(ctx context.Context, name, email string) error {
	if _, err := s.users.GetByName(ctx, name); err == nil {
		return apperrors.NewConflict("name already in use", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already in use", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *AuthService) publishLoginFailed(ctx context.Context, identifier, reason string) {
	s.publish(ctx, events.Event{
		Type:    events.EventLoginFailed,
		Payload: events.LoginFailedPayload{Identifier: identifier, Reason: reason},
	})
}

func identityOf(user *domain.User) domain.Identity {
	return domain.Identity{UserID: user.ID, Name: user.Name, Role: user.Role}
}
