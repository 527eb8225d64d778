package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// UsersHandler exposes profile and account-management endpoints.
type UsersHandler struct {
	users       *service.UserService
	authService *service.AuthService
	cfg         config.Config
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, authService *service.AuthService, cfg config.Config) *UsersHandler {
	return &UsersHandler{users: users, authService: authService, cfg: cfg}
}

// Profile handles GET /users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.users.GetProfile(c.Context(), principal.Identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewProfileResponse(user)}})
}

// Update handles PUT /users. Omitted fields are left untouched; a fresh
// token pair reflects any name or role change for the acting session.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, pair, err := h.users.UpdateProfile(c.Context(), principal.Identity.UserID, service.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}

	setRefreshCookie(c, h.cfg.Auth.RefreshCookiePath, pair)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewProfileResponse(user),
			"auth": dto.AuthResponse{AccessToken: pair.AccessToken, ExpiresAt: pair.AccessExpiresAt},
		},
	})
}

// ChangePassword handles PUT /users/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	pair, err := h.authService.ChangePassword(c.Context(), principal.Identity.UserID, req.Password, req.NewPassword)
	if err != nil {
		return err
	}

	setRefreshCookie(c, h.cfg.Auth.RefreshCookiePath, pair)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth": dto.AuthResponse{AccessToken: pair.AccessToken, ExpiresAt: pair.AccessExpiresAt},
		},
	})
}

// DeleteSelf handles DELETE /users.
func (h *UsersHandler) DeleteSelf(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.DeleteSelfRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.DeleteSelf(c.Context(), principal.Identity.UserID, req.Password); err != nil {
		return err
	}

	clearRefreshCookie(c, h.cfg.Auth.RefreshCookiePath)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "account deleted"}})
}

// List handles GET /users (admin only).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewAdminUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users": out}})
}

// GetByID handles GET /users/:id (admin only).
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// DeleteByID handles DELETE /users/:id (admin only).
func (h *UsersHandler) DeleteByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteByID(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "account deleted"}})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid user id", nil)
	}
	return id, nil
}
