package dto

import (
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login; name or email identifies the account.
type LoginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateRequest carries the partial update. Pointer fields distinguish
// "omitted" from "set to empty".
type ProfileUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// PasswordChangeRequest payload.
type PasswordChangeRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// DeleteSelfRequest confirms deletion with the account password.
type DeleteSelfRequest struct {
	Password string `json:"password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// ProfileResponse is the owner-visible account shape.
type ProfileResponse struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AdminUserResponse is the administrative listing shape.
type AdminUserResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AuthResponse carries the access token; the refresh token travels only in
// its cookie.
type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewUserResponse maps a domain user to its public shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Role: user.Role}
}

// NewProfileResponse maps a domain user to its owner-visible shape.
func NewProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

// NewAdminUserResponse maps a domain user to the administrative shape.
func NewAdminUserResponse(user *domain.User) AdminUserResponse {
	return AdminUserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
