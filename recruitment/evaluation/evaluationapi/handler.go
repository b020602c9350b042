package evaluationapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/evaluation"
	"github.com/meridian-hr/funnel/recruitment/evaluation/evaluationsrv"
)

// Handlers provides HTTP handlers for evaluation grids
type Handlers struct {
	service *evaluationsrv.EvaluationService
}

// NewHandlers creates a new evaluation handlers instance
func NewHandlers(service *evaluationsrv.EvaluationService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateEvaluation opens a pending grid for an application
// POST /api/v1/applications/:id/evaluations
func (h *Handlers) CreateEvaluation(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return evaluation.ErrInvalidRequest().WithDetail("id", "missing or empty")
	}

	var req evaluation.CreateEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return evaluation.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.service.CreateEvaluation(c.Context(), applicationID, req, principal)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListEvaluations returns an application's evaluations
// GET /api/v1/applications/:id/evaluations
func (h *Handlers) ListEvaluations(c *fiber.Ctx) error {
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return evaluation.ErrInvalidRequest().WithDetail("id", "missing or empty")
	}

	evaluations, err := h.service.ListEvaluations(c.Context(), applicationID)
	if err != nil {
		return err
	}

	return c.JSON(evaluations)
}

// UpdateEvaluation merges scores and optionally advances the state
// PUT /api/v1/evaluations/:id
func (h *Handlers) UpdateEvaluation(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	evaluationID := kernel.EvaluationID(c.Params("id"))
	if evaluationID.IsEmpty() {
		return evaluation.ErrEvaluationNotFound().WithDetail("id", "missing or empty")
	}

	var req evaluation.UpdateEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return evaluation.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	response, err := h.service.UpdateEvaluation(c.Context(), evaluationID, req, principal)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// RegisterRoutes registers evaluation routes. Writes are staff-only;
// observers may read.
func RegisterRoutes(app *fiber.App, handlers *Handlers, middleware *auth.Middleware) {
	app.Post("/api/v1/applications/:id/evaluations",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.CreateEvaluation,
	)

	app.Get("/api/v1/applications/:id/evaluations",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin, auth.RoleObserver),
		handlers.ListEvaluations,
	)

	app.Put("/api/v1/evaluations/:id",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleRecruiter, auth.RoleAdmin),
		handlers.UpdateEvaluation,
	)
}
