package lake

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// ReconciliationRepository persists the replay log. Upsert keeps a single
// pending record per application, folding repeated failures into it.
type ReconciliationRepository interface {
	Upsert(ctx context.Context, rec *ReconciliationRecord) error
	List(ctx context.Context, req ListReconciliationRequest) (*kernel.Paginated[ReconciliationRecord], error)
	// MarkReplayed resolves every pending record for the application.
	// Resolving an application without pending records is a no-op.
	MarkReplayed(ctx context.Context, applicationID kernel.ApplicationID) error
}

// BundleReader loads the full projection input for one application in a
// single read-only transaction.
type BundleReader interface {
	Load(ctx context.Context, applicationID kernel.ApplicationID) (*Bundle, error)
}
