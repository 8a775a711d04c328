package handler

import (
	"github.com/gofiber/fiber/v2"

	"metrodoc/internal/http/middleware"
	"metrodoc/internal/model"
	"metrodoc/internal/service"
)

// Login exchanges email and password for a bearer token.
//
// @Summary  Sign in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200 {object} successPayload
// @Failure  401 {object} errorPayload
// @Router   /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var creds model.Credentials
		if err := c.BodyParser(&creds); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		res, err := svc.Login(c.UserContext(), creds)
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, res)
	}
}

// Register creates an account and signs it in.
//
// @Summary  Create an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  201 {object} successPayload
// @Failure  409 {object} errorPayload
// @Router   /api/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reg model.Registration
		if err := c.BodyParser(&reg); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		res, err := svc.Register(c.UserContext(), reg)
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusCreated, res)
	}
}

// Me returns the signed-in user.
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			return respondError(c, fiber.NewError(fiber.StatusUnauthorized, "Authentication required"))
		}
		u, err := svc.Me(c.UserContext(), claims.Subject)
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, u)
	}
}
