package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/sinless777/helix-support/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the verified caller identity. Roles are resolved from
// the ledger per operation, not carried in the token, so a revoked rank
// takes effect on the next request.
type Principal struct {
	UserID string
}

// Middleware validates bearer tokens and stores the principal.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewAuthenticationRequired("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewAuthenticationRequired("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewAuthenticationRequired("invalid token")
	}

	c.Locals(principalKey, &Principal{UserID: claims.Subject})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
