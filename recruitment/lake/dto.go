package lake

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// EventApplicationSubmitted is the only event the internal webhook carries
// today.
const EventApplicationSubmitted = "application.submitted"

// SubmittedEvent is the wire shape the dispatcher posts and the webhook
// parses. It carries the id only; the projector reads the payload from the
// authoritative store so it always sees the committed row.
type SubmittedEvent struct {
	ApplicationID kernel.ApplicationID `json:"application_id"`
	Event         string               `json:"event"`
	TS            time.Time            `json:"ts"`
}

// Replay outcomes per application id.
const (
	ReplayStatusReplayed = "replayed"
	ReplayStatusFailed   = "failed"
)

// ReplayRequest asks the projector to re-run a batch of committed
// application ids.
type ReplayRequest struct {
	ApplicationIDs []kernel.ApplicationID `json:"application_ids"`
}

// ReplayOutcome reports the result for one replayed id.
type ReplayOutcome struct {
	ApplicationID kernel.ApplicationID `json:"application_id"`
	Status        string               `json:"status"`
	Error         string               `json:"error,omitempty"`
}

// ReplayResponse wraps the per-id outcomes of a replay batch.
type ReplayResponse struct {
	Outcomes []ReplayOutcome `json:"outcomes"`
}

// ListReconciliationRequest filters the reconciliation log.
type ListReconciliationRequest struct {
	Status     ReconciliationStatus     `json:"-"`
	Pagination kernel.PaginationOptions `json:"-"`
}
