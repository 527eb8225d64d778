package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/domain"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// RequireRole ensures the principal carries one of the allowed roles.
// Comparison is case-insensitive. An empty allowed set accepts any
// authenticated caller.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[domain.Role(strings.ToUpper(string(role)))] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		role := domain.Role(strings.ToUpper(string(principal.Identity.Role)))
		if _, exists := allowedSet[role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin gates administrative endpoints.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
