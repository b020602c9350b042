package userauth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/recruitment/user"
)

type Handlers struct {
	authService *AuthService
}

func NewHandlers(authService *AuthService) *Handlers {
	return &Handlers{
		authService: authService,
	}
}

// RegisterCandidate handles candidate self-signup
// POST /api/v1/auth/signup/candidate
func (h *Handlers) RegisterCandidate(c *fiber.Ctx) error {
	var req user.RegisterCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.authService.RegisterCandidate(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// Login authenticates with email and password
// POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req user.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.authService.Login(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// Refresh rotates a refresh token
// POST /api/v1/auth/refresh
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req user.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.authService.Refresh(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// ChangePassword updates the authenticated user's password
// POST /api/v1/auth/change-password
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	var req user.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if err := h.authService.ChangePassword(c.Context(), principal.UserID, req); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

// Logout revokes the presented refresh token
// POST /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	var req user.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if err := h.authService.Logout(c.Context(), req); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// RegisterRoutes registers authentication routes
func RegisterRoutes(
	app *fiber.App,
	handlers *Handlers,
	authMiddleware fiber.Handler,
) {
	api := app.Group("/api/v1/auth")

	// Public routes
	api.Post("/signup/candidate", handlers.RegisterCandidate)
	api.Post("/login", handlers.Login)
	api.Post("/refresh", handlers.Refresh)
	api.Post("/logout", handlers.Logout)

	// Protected routes
	api.Post("/change-password", authMiddleware, handlers.ChangePassword)
}
