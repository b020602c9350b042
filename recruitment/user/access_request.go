package user

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// AccessRequestStatus tracks the review of a pending candidate signup.
type AccessRequestStatus string

const (
	AccessRequestPending  AccessRequestStatus = "pending"
	AccessRequestApproved AccessRequestStatus = "approved"
	AccessRequestRejected AccessRequestStatus = "rejected"
)

// AccessRequest is created automatically when a candidate signs up in
// pending state. Approving it activates the account.
type AccessRequest struct {
	ID         kernel.AccessRequestID `db:"id" json:"id"`
	UserID     kernel.UserID          `db:"user_id" json:"user_id"`
	Status     AccessRequestStatus    `db:"status" json:"status"`
	ApproverID *kernel.UserID         `db:"approver_id" json:"approver_id,omitempty"`
	ResolvedAt *time.Time             `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}

func (a *AccessRequest) IsResolved() bool {
	return a.Status != AccessRequestPending
}

// Approve resolves the request positively. The caller is recorded.
func (a *AccessRequest) Approve(approver kernel.UserID) error {
	if a.IsResolved() {
		return ErrAccessRequestResolved()
	}
	now := time.Now()
	a.Status = AccessRequestApproved
	a.ApproverID = &approver
	a.ResolvedAt = &now
	return nil
}

// Reject resolves the request negatively.
func (a *AccessRequest) Reject(approver kernel.UserID) error {
	if a.IsResolved() {
		return ErrAccessRequestResolved()
	}
	now := time.Now()
	a.Status = AccessRequestRejected
	a.ApproverID = &approver
	a.ResolvedAt = &now
	return nil
}
