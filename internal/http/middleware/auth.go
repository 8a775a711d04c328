package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"metrodoc/internal/auth"
)

// ClaimsLocalKey stores the verified token claims in fiber locals.
const ClaimsLocalKey = "auth_claims"

// TokenValidator verifies a bearer token.
type TokenValidator interface {
	Validate(token string) (auth.Claims, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <token>" header with 401.
func Auth(v TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}
		claims, err := v.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return fiber.NewError(fiber.StatusUnauthorized, "Session expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *fiber.Ctx) (auth.Claims, bool) {
	claims, ok := c.Locals(ClaimsLocalKey).(auth.Claims)
	return claims, ok
}
