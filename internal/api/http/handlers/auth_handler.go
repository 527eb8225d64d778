package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

const refreshCookieName = "refreshToken"

// AuthHandler exposes registration, login and token lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
	cfg  config.Config
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.Config) *AuthHandler {
	return &AuthHandler{auth: authService, cfg: cfg}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, pair, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{AccessToken: pair.AccessToken, ExpiresAt: pair.AccessExpiresAt},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, pair, err := h.auth.Login(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{AccessToken: pair.AccessToken, ExpiresAt: pair.AccessExpiresAt},
		},
	})
}

// Refresh handles POST /auth/refresh. The refresh token arrives only via its
// path-scoped cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	access, expiresAt, err := h.auth.Refresh(c.Context(), c.Cookies(refreshCookieName))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth": dto.AuthResponse{AccessToken: access, ExpiresAt: expiresAt},
		},
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so logout only
// clears the cookie; outstanding tokens remain valid until expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// RequestPasswordReset handles POST /auth/password/reset/request. The
// response never reveals whether the email has an account.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, err := h.auth.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}

	response := fiber.Map{"message": "if the account exists, a reset token has been issued"}
	// No mail delivery is wired up; development mode surfaces the token so
	// the flow stays testable end to end.
	if h.cfg.App.Development() && token != nil {
		response["token"] = token.Token
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": response})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, pair *domain.TokenPair) {
	setRefreshCookie(c, h.cfg.Auth.RefreshCookiePath, pair)
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	clearRefreshCookie(c, h.cfg.Auth.RefreshCookiePath)
}

func setRefreshCookie(c *fiber.Ctx, path string, pair *domain.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     path,
		Expires:  pair.RefreshExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearRefreshCookie(c *fiber.Ctx, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
