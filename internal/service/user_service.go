package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// ProfilePatch carries partial-update fields. A nil field means "no change";
// presence is decided by the caller, never by a falsy check.
type ProfilePatch struct {
	Name  *string
	Email *string
	Role  *string
}

// UserService covers profile reads, partial updates and account deletion.
type UserService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, tokens: tokens, dispatcher: dispatcher}
}

// GetProfile loads the caller's current record. The row may have been
// deleted after token issuance.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.getUser(ctx, userID)
}

// GetUser loads any account by id (administrative read).
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, id)
}

// ListUsers returns all accounts (administrative read).
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateProfile applies the present patch fields and re-issues a token pair
// so the acting session immediately carries any name/role change. Tokens
// held by other sessions stay stale until they expire.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*domain.User, *domain.TokenPair, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var changed []string
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, nil, err
		}
		user.Name = *patch.Name
		changed = append(changed, "name")
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, nil, err
		}
		user.Email = *patch.Email
		changed = append(changed, "email")
	}
	if patch.Role != nil {
		role, err := domain.ParseRole(*patch.Role)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error(), nil)
		}
		user.Role = role
		changed = append(changed, "role")
	}

	if len(changed) > 0 {
		if err := s.users.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, nil, apperrors.NewConflict("name or email already in use", nil)
			}
			return nil, nil, err
		}
	}

	pair, err := s.tokens.IssuePair(identityOf(user))
	if err != nil {
		return nil, nil, err
	}

	if len(changed) > 0 {
		s.publish(ctx, events.Event{
			Type:    events.EventProfileUpdated,
			UserID:  user.ID,
			Payload: events.ProfileUpdatedPayload{Fields: changed},
		})
	}
	return user, pair, nil
}

// DeleteSelf removes the caller's account after password confirmation.
func (s *UserService) DeleteSelf(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return apperrors.NewValidationError("password is required", nil)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return apperrors.NewUnauthorized("incorrect credentials")
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  user.ID,
		Payload: events.UserDeletedPayload{ByAdmin: false},
	})
	return nil
}

// DeleteByID removes any account without password confirmation; callers gate
// this behind the admin role.
func (s *UserService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  id,
		Payload: events.UserDeletedPayload{ByAdmin: true},
	})
	return nil
}

func (s *UserService) getUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
