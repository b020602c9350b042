package offerapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/offer"
	"github.com/meridian-hr/funnel/recruitment/offer/offersrv"
)

// Handlers provides HTTP handlers for offer operations
type Handlers struct {
	service *offersrv.OfferService
}

// NewHandlers creates a new offer handlers instance
func NewHandlers(service *offersrv.OfferService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateOffer drafts a new job offer
// POST /api/v1/jobs
func (h *Handlers) CreateOffer(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	var req offer.CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return offer.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	newOffer, err := h.service.CreateOffer(c.Context(), req, principal.UserID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newOffer)
}

// ListOffers retrieves offers within the caller's visibility window
// GET /api/v1/jobs
func (h *Handlers) ListOffers(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	req := offer.ListOffersRequest{
		ContractType: offer.ContractType(c.Query("contract_type")),
		Department:   c.Query("department"),
		Search:       c.Query("search"),
		Status:       offer.OfferStatus(c.Query("status")),
		Pagination:   parsePaginationOptions(c),
	}

	offers, err := h.service.ListOffers(c.Context(), req, principal)
	if err != nil {
		return err
	}

	return c.JSON(offers)
}

// GetOffer retrieves an offer by ID
// GET /api/v1/jobs/:id
func (h *Handlers) GetOffer(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	offerID := kernel.OfferID(c.Params("id"))
	if offerID.IsEmpty() {
		return offer.ErrOfferNotFound().WithDetail("id", "missing or empty")
	}

	offerEntity, err := h.service.GetOffer(c.Context(), offerID, principal)
	if err != nil {
		return err
	}

	return c.JSON(offerEntity)
}

// UpdateOffer applies a partial update to an offer
// PUT /api/v1/jobs/:id
func (h *Handlers) UpdateOffer(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	offerID := kernel.OfferID(c.Params("id"))
	if offerID.IsEmpty() {
		return offer.ErrOfferNotFound().WithDetail("id", "missing or empty")
	}

	var req offer.UpdateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return offer.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	updatedOffer, err := h.service.UpdateOffer(c.Context(), offerID, req, principal)
	if err != nil {
		return err
	}

	return c.JSON(updatedOffer)
}

// DeleteOffer removes a draft offer
// DELETE /api/v1/jobs/:id
func (h *Handlers) DeleteOffer(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	offerID := kernel.OfferID(c.Params("id"))
	if offerID.IsEmpty() {
		return offer.ErrOfferNotFound().WithDetail("id", "missing or empty")
	}

	if err := h.service.DeleteOffer(c.Context(), offerID, principal); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// PublishOffer opens a draft offer to candidates
// POST /api/v1/jobs/:id/publish
func (h *Handlers) PublishOffer(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	offerID := kernel.OfferID(c.Params("id"))
	if offerID.IsEmpty() {
		return offer.ErrOfferNotFound().WithDetail("id", "missing or empty")
	}

	publishedOffer, err := h.service.PublishOffer(c.Context(), offerID, principal)
	if err != nil {
		return err
	}

	return c.JSON(publishedOffer)
}

// CloseOffer stops an open offer from accepting applications
// POST /api/v1/jobs/:id/close
func (h *Handlers) CloseOffer(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	offerID := kernel.OfferID(c.Params("id"))
	if offerID.IsEmpty() {
		return offer.ErrOfferNotFound().WithDetail("id", "missing or empty")
	}

	closedOffer, err := h.service.CloseOffer(c.Context(), offerID, principal)
	if err != nil {
		return err
	}

	return c.JSON(closedOffer)
}

// GetStats returns offer counts by lifecycle state
// GET /api/v1/jobs/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(stats)
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

// RegisterRoutes registers all offer routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, middleware *auth.Middleware) {
	jobs := app.Group("/api/v1/jobs")

	// Literal path before /:id so the router matches it first
	jobs.Get("/stats",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.GetStats,
	)

	// Read routes, open to every authenticated role; the service narrows
	// what candidates actually see
	jobs.Get("/",
		middleware.Authenticate(),
		handlers.ListOffers,
	)

	jobs.Get("/:id",
		middleware.Authenticate(),
		handlers.GetOffer,
	)

	// Write routes
	jobs.Post("/",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.CreateOffer,
	)

	jobs.Put("/:id",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.UpdateOffer,
	)

	jobs.Delete("/:id",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.DeleteOffer,
	)

	jobs.Post("/:id/publish",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.PublishOffer,
	)

	jobs.Post("/:id/close",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.CloseOffer,
	)
}
