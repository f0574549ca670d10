package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RequireAgent rejects callers authenticated as end users. Anonymous
// callers use the agent console and pass.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if ok && !principal.IsAgent() {
			return apperrors.NewForbidden("agent role required")
		}
		return c.Next()
	}
}

// RequireSession ensures the caller presented a valid token.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("session required")
		}
		return c.Next()
	}
}
