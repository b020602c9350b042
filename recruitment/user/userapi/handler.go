package userapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/user"
	"github.com/meridian-hr/funnel/recruitment/user/usersrv"
)

// Handlers provides HTTP handlers for account administration, access
// request review and candidate profiles
type Handlers struct {
	service *usersrv.UserService
}

// NewHandlers creates a new user handlers instance
func NewHandlers(service *usersrv.UserService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateUser creates an account with any role
// POST /api/v1/users
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req user.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.service.CreateUser(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListUsers retrieves accounts filtered by role and status
// GET /api/v1/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	req := user.ListUsersRequest{
		Role:       auth.Role(c.Query("role")),
		Status:     auth.UserStatus(c.Query("status")),
		Pagination: parsePaginationOptions(c),
	}

	users, err := h.service.ListUsers(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(users)
}

// GetMe returns the authenticated account
// GET /api/v1/users/me
func (h *Handlers) GetMe(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	response, err := h.service.GetUser(c.Context(), principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// GetMyProfile returns the authenticated candidate's profile
// GET /api/v1/users/me/profile
func (h *Handlers) GetMyProfile(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	profile, err := h.service.GetProfile(c.Context(), principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

// UpdateMyProfile applies a partial update to the candidate's profile
// PUT /api/v1/users/me/profile
func (h *Handlers) UpdateMyProfile(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	var req user.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return user.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	profile, err := h.service.UpdateProfile(c.Context(), principal.UserID, req)
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

// GetUser retrieves an account by ID
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	userID := kernel.UserID(c.Params("id"))
	if userID.IsEmpty() {
		return user.ErrUserNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.GetUser(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// ActivateUser activates a pending or blocked account
// POST /api/v1/users/:id/activate
func (h *Handlers) ActivateUser(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	userID := kernel.UserID(c.Params("id"))
	if userID.IsEmpty() {
		return user.ErrUserNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.ActivateUser(c.Context(), userID, principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// BlockUser suspends an account
// POST /api/v1/users/:id/block
func (h *Handlers) BlockUser(c *fiber.Ctx) error {
	userID := kernel.UserID(c.Params("id"))
	if userID.IsEmpty() {
		return user.ErrUserNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.BlockUser(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// UnblockUser restores a blocked account
// POST /api/v1/users/:id/unblock
func (h *Handlers) UnblockUser(c *fiber.Ctx) error {
	userID := kernel.UserID(c.Params("id"))
	if userID.IsEmpty() {
		return user.ErrUserNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.UnblockUser(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// ListAccessRequests retrieves open signup requests
// GET /api/v1/access-requests
func (h *Handlers) ListAccessRequests(c *fiber.Ctx) error {
	pagination := parsePaginationOptions(c)

	requests, err := h.service.ListPendingAccessRequests(c.Context(), pagination)
	if err != nil {
		return err
	}

	return c.JSON(requests)
}

// ApproveAccessRequest resolves a signup request and activates the account
// POST /api/v1/access-requests/:id/approve
func (h *Handlers) ApproveAccessRequest(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	requestID := kernel.AccessRequestID(c.Params("id"))
	if requestID.IsEmpty() {
		return user.ErrAccessRequestNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.ApproveAccessRequest(c.Context(), requestID, principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// RejectAccessRequest resolves a signup request negatively
// POST /api/v1/access-requests/:id/reject
func (h *Handlers) RejectAccessRequest(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	requestID := kernel.AccessRequestID(c.Params("id"))
	if requestID.IsEmpty() {
		return user.ErrAccessRequestNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.RejectAccessRequest(c.Context(), requestID, principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// ============================================================================
// Helper Functions
// ============================================================================

// parsePaginationOptions extracts pagination options from query parameters
func parsePaginationOptions(c *fiber.Ctx) kernel.PaginationOptions {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	return kernel.PaginationOptions{
		Page:     page,
		PageSize: pageSize,
	}.Normalized()
}

// RegisterRoutes registers user administration and profile routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, middleware *auth.Middleware) {
	users := app.Group("/api/v1/users")

	// Self-service routes; /me before /:id so the literal path wins
	users.Get("/me",
		middleware.Authenticate(),
		handlers.GetMe,
	)

	users.Get("/me/profile",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate),
		handlers.GetMyProfile,
	)

	users.Put("/me/profile",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate),
		handlers.UpdateMyProfile,
	)

	// Administration routes
	users.Get("/",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.ListUsers,
	)

	users.Post("/",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.CreateUser,
	)

	users.Get("/:id",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.GetUser,
	)

	users.Post("/:id/activate",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.ActivateUser,
	)

	users.Post("/:id/block",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.BlockUser,
	)

	users.Post("/:id/unblock",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.UnblockUser,
	)

	// Access request review
	requests := app.Group("/api/v1/access-requests")

	requests.Get("/",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.ListAccessRequests,
	)

	requests.Post("/:id/approve",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.ApproveAccessRequest,
	)

	requests.Post("/:id/reject",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.RejectAccessRequest,
	)
}
