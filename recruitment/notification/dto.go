package notification

import (
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// ListNotificationsRequest - DTO for the per-user listing
type ListNotificationsRequest struct {
	UserID     kernel.UserID            `json:"user_id"`
	UnreadOnly bool                     `json:"unread_only"`
	Pagination kernel.PaginationOptions `json:"pagination"`
}

// Response type alias for paginated notifications
type PaginatedNotificationsResponse = kernel.Paginated[Notification]

// StatsResponse - per-user notification counters
type StatsResponse struct {
	Total  int                      `json:"total"`
	Unread int                      `json:"unread"`
	ByType map[NotificationType]int `json:"by_type"`
}
