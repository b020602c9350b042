package notificationapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/notification"
	"github.com/meridian-hr/funnel/recruitment/notification/notificationsrv"
)

// Handlers provides HTTP handlers for the per-user notification log
type Handlers struct {
	service *notificationsrv.NotificationService
}

// NewHandlers creates a new notification handlers instance
func NewHandlers(service *notificationsrv.NotificationService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// ListNotifications retrieves the caller's notifications, newest first
// GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	req := notification.ListNotificationsRequest{
		UserID:     principal.UserID,
		UnreadOnly: c.QueryBool("unread_only", false),
		Pagination: parsePaginationOptions(c),
	}

	notifications, err := h.service.ListNotifications(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(notifications)
}

// MarkRead flips the read flag of one of the caller's notifications
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	notificationID := kernel.NotificationID(c.Params("id"))
	if notificationID.IsEmpty() {
		return notification.ErrNotificationNotFound().WithDetail("id", "missing or empty")
	}

	n, err := h.service.MarkRead(c.Context(), notificationID, principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(n)
}

// MarkAllRead flips the read flag on all of the caller's notifications
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllRead(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	if err := h.service.MarkAllRead(c.Context(), principal.UserID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Stats returns the caller's notification counters
// GET /api/v1/notifications/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated()
	}

	stats, err := h.service.Stats(c.Context(), principal.UserID)
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

// RegisterRoutes registers notification routes. All routes are owner-scoped;
// any authenticated role may read its own log.
func RegisterRoutes(app *fiber.App, handlers *Handlers, middleware *auth.Middleware) {
	notifications := app.Group("/api/v1/notifications")

	notifications.Get("/",
		middleware.Authenticate(),
		handlers.ListNotifications,
	)

	notifications.Get("/stats",
		middleware.Authenticate(),
		handlers.Stats,
	)

	notifications.Post("/read-all",
		middleware.Authenticate(),
		handlers.MarkAllRead,
	)

	notifications.Post("/:id/read",
		middleware.Authenticate(),
		handlers.MarkRead,
	)
}
