package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads principals from the
// directory.
type AuthMiddleware struct {
	tokens    *TokenManager
	directory repository.Directory
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, directory repository.Directory) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, directory: directory}
}

// Handle loads the principal when a bearer token is present. Requests
// without one pass through anonymously; a bad token is rejected.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal, err := Resolve(c.UserContext(), m.directory, claims.Subject, claims.SubjectID)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Resolve looks the subject up in the directory.
func Resolve(ctx context.Context, directory repository.Directory, subject domain.SubjectType, id string) (*domain.Principal, error) {
	principal := &domain.Principal{Type: subject}
	switch subject {
	case domain.SubjectTypeUser:
		user, err := directory.User(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperrors.NewUnauthorized("user not found")
			}
			return nil, apperrors.MapError(err)
		}
		principal.User = user
	case domain.SubjectTypeAgent:
		agent, err := directory.Agent(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAgentNotFound) {
				return nil, apperrors.NewUnauthorized("agent not found")
			}
			return nil, apperrors.MapError(err)
		}
		principal.Agent = agent
	default:
		return nil, apperrors.NewUnauthorized("unknown subject")
	}
	return principal, nil
}

// PrincipalFromContext retrieves the authenticated entity. It returns nil
// for anonymous requests.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
