package lakeapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/lake"
	"github.com/meridian-hr/funnel/recruitment/lake/lakesrv"
)

// Handlers provides the internal webhook endpoints driving the lake
// projector, plus the operator-facing reconciliation listing.
type Handlers struct {
	projector *lakesrv.Projector
}

// NewHandlers creates a new lake handlers instance
func NewHandlers(projector *lakesrv.Projector) *Handlers {
	return &Handlers{
		projector: projector,
	}
}

// HandleSubmitted projects one committed application into the lake. The
// dispatcher retries on any non-2xx, so a failed projection surfaces as 500
// here and the candidate-facing write path never notices.
// POST /api/v1/webhooks/application-submitted
func (h *Handlers) HandleSubmitted(c *fiber.Ctx) error {
	var event lake.SubmittedEvent
	if err := c.BodyParser(&event); err != nil {
		return lake.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if event.ApplicationID.IsEmpty() {
		return lake.ErrInvalidRequest().WithDetail("application_id", "missing or empty")
	}
	if event.Event != lake.EventApplicationSubmitted {
		return lake.ErrInvalidRequest().
			WithDetail("event", event.Event).
			WithDetail("expected", lake.EventApplicationSubmitted)
	}

	if err := h.projector.Project(c.Context(), event.ApplicationID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// Replay re-projects a batch of application ids and reports the outcome per
// id. One failed id does not stop the batch.
// POST /api/v1/webhooks/replay
func (h *Handlers) Replay(c *fiber.Ctx) error {
	var req lake.ReplayRequest
	if err := c.BodyParser(&req); err != nil {
		return lake.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if len(req.ApplicationIDs) == 0 {
		return lake.ErrInvalidRequest().WithDetail("application_ids", "missing or empty")
	}

	outcomes := h.projector.Replay(c.Context(), req)

	return c.Status(fiber.StatusAccepted).JSON(lake.ReplayResponse{Outcomes: outcomes})
}

// ListReconciliation returns the replay log for operators
// GET /api/v1/reconciliation
func (h *Handlers) ListReconciliation(c *fiber.Ctx) error {
	status := lake.ReconciliationStatus(c.Query("status"))
	if status != "" && status != lake.ReconciliationPending && status != lake.ReconciliationReplayed {
		return lake.ErrInvalidRequest().
			WithDetail("status", string(status))
	}

	req := lake.ListReconciliationRequest{
		Status:     status,
		Pagination: parsePaginationOptions(c),
	}

	records, err := h.projector.ListReconciliation(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(records)
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

// RegisterRoutes registers the internal webhook routes behind the shared
// secret and the reconciliation listing behind the admin role.
func RegisterRoutes(app *fiber.App, handlers *Handlers, middleware *auth.Middleware, webhookSecret string) {
	webhooks := app.Group("/api/v1/webhooks", auth.RequireWebhookToken(webhookSecret))

	webhooks.Post("/application-submitted", handlers.HandleSubmitted)
	webhooks.Post("/replay", handlers.Replay)

	app.Get("/api/v1/reconciliation",
		middleware.Authenticate(),
		middleware.RequireRoles(auth.RoleAdmin),
		handlers.ListReconciliation,
	)
}
