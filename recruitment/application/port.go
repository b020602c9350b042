package application

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Repository defines persistence for applications and their attachments.
type Repository interface {
	// Submit persists the application with its documents, answers and
	// contacts in a single transaction. app.Documents must carry content.
	// A live duplicate for (candidate, offer) surfaces as a typed conflict.
	Submit(ctx context.Context, app *Application) error

	// GetByID retrieves one application hydrated with answers, contacts
	// and document metadata (no content).
	GetByID(ctx context.Context, id kernel.ApplicationID) (*Application, error)

	// List returns hydrated applications matching the request filters.
	List(ctx context.Context, req ListApplicationsRequest) (*kernel.Paginated[Application], error)

	// Update persists status changes.
	Update(ctx context.Context, app *Application) error

	// HasActiveForOffer reports whether the candidate holds a non-withdrawn
	// application for the offer.
	HasActiveForOffer(ctx context.Context, candidateID kernel.UserID, offerID kernel.OfferID) (bool, error)

	// GetDocument retrieves one attachment including its content.
	GetDocument(ctx context.Context, id kernel.DocumentID) (*Document, error)
}

// IdempotencyStore remembers request ids across a sliding window so client
// retries of a submit return the originally committed application instead
// of a duplicate conflict. An unavailable store degrades the writer to
// non-idempotent; it never blocks a submission.
type IdempotencyStore interface {
	// Claim reserves requestID for applicationID. When the id was already
	// claimed within the window, the original application id is returned
	// with owned=false.
	Claim(ctx context.Context, requestID string, applicationID kernel.ApplicationID) (claimed kernel.ApplicationID, owned bool, err error)

	// Release drops a claim after a failed submit so a retry starts fresh.
	Release(ctx context.Context, requestID string) error
}
