package notification

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Repository defines persistence for the notification log.
type Repository interface {
	// Create appends one notification. Callers treat failures as
	// best-effort: log and move on, never fail the triggering operation.
	Create(ctx context.Context, n *Notification) error

	GetByID(ctx context.Context, id kernel.NotificationID) (*Notification, error)

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, req ListNotificationsRequest) (*kernel.Paginated[Notification], error)

	MarkRead(ctx context.Context, id kernel.NotificationID) error

	MarkAllRead(ctx context.Context, userID kernel.UserID) error

	// Stats returns total, unread and per-type counts for a user.
	Stats(ctx context.Context, userID kernel.UserID) (*StatsResponse, error)
}
