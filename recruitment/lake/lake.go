package lake

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/offer"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// ReconciliationStatus tracks whether a failed fan-out or projection has
// been replayed yet.
type ReconciliationStatus string

const (
	ReconciliationPending  ReconciliationStatus = "pending"
	ReconciliationReplayed ReconciliationStatus = "replayed"
)

// Reconciliation reasons. One record exists per application while pending;
// repeated failures fold into it.
const (
	ReasonDispatchFailed   = "webhook_dispatch_failed"
	ReasonProjectionFailed = "lake_projection_failed"
)

// ReconciliationRecord is the durable trace of an application whose lake
// projection did not happen. The authoritative rows are intact; an operator
// replay through the projector resolves the record.
type ReconciliationRecord struct {
	ID            kernel.ReconciliationID `db:"id" json:"id"`
	ApplicationID kernel.ApplicationID    `db:"application_id" json:"application_id"`
	Reason        string                  `db:"reason" json:"reason"`
	Attempts      int                     `db:"attempts" json:"attempts"`
	LastError     string                  `db:"last_error" json:"last_error,omitempty"`
	Status        ReconciliationStatus    `db:"status" json:"status"`
	CreatedAt     time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time               `db:"updated_at" json:"updated_at"`
}

func (r *ReconciliationRecord) IsPending() bool {
	return r.Status == ReconciliationPending
}

// Bundle is everything the projector needs for one application, loaded in a
// single read-only transaction so it observes the writer's commit as one
// snapshot. Documents carry their content bytes.
type Bundle struct {
	Application *application.Application
	Candidate   *user.User
	// Profile is nil when the candidate never filled one in; the dimension
	// document then carries only the account fields.
	Profile *user.CandidateProfile
	Offer   *offer.Offer
}
