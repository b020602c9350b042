package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const principalLocal = "auth_principal"

// Middleware guards routes with access-token authentication and role checks.
type Middleware struct {
	tokens *TokenService
}

func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate parses the Bearer token and stores the principal in locals.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return ErrUnauthenticated()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ErrUnauthenticated().WithDetail("reason", "malformed authorization header")
		}

		principal, err := m.tokens.Parse(parts[1])
		if err != nil {
			return err
		}

		c.Locals(principalLocal, principal)
		return c.Next()
	}
}

// RequireRoles rejects principals that hold none of the given roles.
// It must run after Authenticate.
func (m *Middleware) RequireRoles(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return ErrUnauthenticated()
		}
		if !principal.HasRole(roles...) {
			return ErrForbidden().WithDetail("required_roles", roles)
		}
		return c.Next()
	}
}

// RequireActiveCandidate admits only candidates whose account is active,
// distinguishing pending from blocked so the client can explain the refusal.
func (m *Middleware) RequireActiveCandidate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return ErrUnauthenticated()
		}
		if principal.Role != RoleCandidate {
			return ErrForbidden().WithDetail("required_roles", []Role{RoleCandidate})
		}
		switch principal.Status {
		case StatusActive:
			return c.Next()
		case StatusPending:
			return ErrAccountPending()
		default:
			return ErrAccountBlocked()
		}
	}
}

// GetPrincipal extracts the authenticated principal from the request.
func GetPrincipal(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalLocal).(*Principal)
	return principal, ok
}

// RequireWebhookToken authenticates internal calls via the X-Webhook-Token
// header, compared in constant time. It bypasses user auth entirely.
func RequireWebhookToken(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get("X-Webhook-Token")
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			return ErrWebhookTokenInvalid()
		}
		return c.Next()
	}
}
