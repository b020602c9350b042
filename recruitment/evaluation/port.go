package evaluation

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Repository defines persistence for evaluations.
type Repository interface {
	Create(ctx context.Context, e *Evaluation) error

	GetByID(ctx context.Context, id kernel.EvaluationID) (*Evaluation, error)

	// ListByApplication returns an application's evaluations in creation
	// order. The set is small (one grid per evaluator per protocol).
	ListByApplication(ctx context.Context, applicationID kernel.ApplicationID) ([]Evaluation, error)

	Update(ctx context.Context, e *Evaluation) error
}
