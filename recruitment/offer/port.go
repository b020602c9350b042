package offer

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Repository defines persistence for job offers.
type Repository interface {
	Create(ctx context.Context, o *Offer) error

	Update(ctx context.Context, o *Offer) error

	GetByID(ctx context.Context, id kernel.OfferID) (*Offer, error)

	// List returns offers matching the request filters. Visibility and
	// status restrictions arrive pre-computed in the request.
	List(ctx context.Context, req ListOffersRequest) (*kernel.Paginated[Offer], error)

	// Delete removes an offer row. Services only delete drafts.
	Delete(ctx context.Context, id kernel.OfferID) error

	// Stats counts offers per lifecycle state.
	Stats(ctx context.Context) (*StatsResponse, error)
}
