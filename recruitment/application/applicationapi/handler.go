package applicationapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/application/applicationsrv"
)

// Handlers provides HTTP handlers for application operations
type Handlers struct {
	service *applicationsrv.ApplicationService
}

// NewHandlers creates a new application handlers instance
func NewHandlers(service *applicationsrv.ApplicationService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// SubmitApplication submits a new application with its documents
// POST /api/v1/applications
func (h *Handlers) SubmitApplication(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	var req application.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if req.OfferID.IsEmpty() {
		return application.ErrInvalidRequest().WithDetail("offer_id", "missing or empty")
	}

	req.RequestID = c.Get("X-Request-Id")

	response, err := h.service.SubmitApplication(c.Context(), req, principal)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListApplications retrieves applications; candidates see their own
// GET /api/v1/applications
func (h *Handlers) ListApplications(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	req := application.ListApplicationsRequest{
		OfferID:    kernel.OfferID(c.Query("offer_id")),
		Status:     application.ApplicationStatus(c.Query("status")),
		Pagination: parsePaginationOptions(c),
	}

	applications, err := h.service.ListApplications(c.Context(), req, principal)
	if err != nil {
		return err
	}

	return c.JSON(applications)
}

// GetApplication retrieves an application by ID
// GET /api/v1/applications/:id
func (h *Handlers) GetApplication(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.GetApplication(c.Context(), applicationID, principal)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// UpdateStatus applies a recruiter-driven status transition
// PUT /api/v1/applications/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	var req application.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.service.UpdateStatus(c.Context(), applicationID, req, principal)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// WithdrawApplication retracts the caller's own application
// POST /api/v1/applications/:id/withdraw
func (h *Handlers) WithdrawApplication(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	response, err := h.service.Withdraw(c.Context(), applicationID, principal)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// DownloadDocument streams one attachment back to an authorized caller
// GET /api/v1/applications/:id/documents/:docId
func (h *Handlers) DownloadDocument(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	documentID := kernel.DocumentID(c.Params("docId"))
	if documentID.IsEmpty() {
		return application.ErrDocumentNotFound().WithDetail("id", "missing or empty")
	}

	doc, err := h.service.GetDocument(c.Context(), applicationID, documentID, principal)
	if err != nil {
		return err
	}

	mimeType := doc.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	c.Set(fiber.HeaderContentType, mimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))

	return c.Send(doc.Content)
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

// RegisterRoutes registers all application routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, middleware *auth.Middleware) {
	applications := app.Group("/api/v1/applications")

	applications.Post("/",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate),
		middleware.RequireActiveCandidate(),
		handlers.SubmitApplication,
	)

	applications.Get("/",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate, auth.RoleRecruiter, auth.RoleAdmin),
		handlers.ListApplications,
	)

	applications.Get("/:id",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate, auth.RoleRecruiter, auth.RoleAdmin),
		handlers.GetApplication,
	)

	applications.Put("/:id/status",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.UpdateStatus,
	)

	applications.Post("/:id/withdraw",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate),
		handlers.WithdrawApplication,
	)

	applications.Get("/:id/documents/:docId",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleCandidate, auth.RoleRecruiter, auth.RoleAdmin),
		handlers.DownloadDocument,
	)
}
