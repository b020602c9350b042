package notificationsrv

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/notification"
)

// NotificationService exposes the per-user event log. Writes happen inside
// the owning domain services; this service only reads and flips read flags.
type NotificationService struct {
	repo notification.Repository
}

// NewNotificationService creates a new instance of the notification service
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

// ListNotifications retrieves the caller's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, req notification.ListNotificationsRequest) (*notification.PaginatedNotificationsResponse, error) {
	req.Pagination = req.Pagination.Normalized()

	notifications, err := s.repo.ListByUser(ctx, req)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list notifications", errx.TypeInternal)
	}

	return notifications, nil
}

// MarkRead flips the read flag of one notification. Rows owned by another
// user are reported as not found so ids cannot be probed.
func (s *NotificationService) MarkRead(ctx context.Context, id kernel.NotificationID, userID kernel.UserID) (*notification.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if n.UserID != userID {
		return nil, notification.ErrNotificationNotFound()
	}

	if !n.Read {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, errx.Wrap(err, "failed to mark notification read", errx.TypeInternal)
		}
		n.MarkRead()
	}

	return n, nil
}

// MarkAllRead flips the read flag on every unread notification of the caller
func (s *NotificationService) MarkAllRead(ctx context.Context, userID kernel.UserID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return errx.Wrap(err, "failed to mark notifications read", errx.TypeInternal)
	}

	return nil
}

// Stats returns the caller's notification counters
func (s *NotificationService) Stats(ctx context.Context, userID kernel.UserID) (*notification.StatsResponse, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load notification stats", errx.TypeInternal)
	}

	return stats, nil
}
