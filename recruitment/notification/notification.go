package notification

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	TypeApplicationSubmitted NotificationType = "application_submitted"
	TypeApplicationStatus    NotificationType = "application_status_changed"
	TypeAccountActivated     NotificationType = "account_activated"
	TypeNewApplication       NotificationType = "new_application"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeApplicationSubmitted, TypeApplicationStatus,
		TypeAccountActivated, TypeNewApplication:
		return true
	}
	return false
}

// Notification is one row of the append-only per-user event log. Rows are
// written after the triggering transaction commits and are never updated
// except for the read flag.
type Notification struct {
	ID        kernel.NotificationID `db:"id" json:"id"`
	UserID    kernel.UserID         `db:"user_id" json:"user_id"`
	Type      NotificationType      `db:"type" json:"type"`
	Title     string                `db:"title" json:"title"`
	Body      string                `db:"body" json:"body"`
	Read      bool                  `db:"read" json:"read"`
	CreatedAt time.Time             `db:"created_at" json:"created_at"`
}

// MarkRead flips the read flag.
func (n *Notification) MarkRead() {
	n.Read = true
}
