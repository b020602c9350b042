package evaluationsrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/evaluation"
)

// EvaluationService manages evaluation grids attached to applications.
// Writes are restricted to the evaluator (or an admin); the route layer
// additionally gates roles.
type EvaluationService struct {
	evaluationRepo  evaluation.Repository
	applicationRepo application.Repository
}

// NewEvaluationService creates a new instance of the evaluation service
func NewEvaluationService(
	evaluationRepo evaluation.Repository,
	applicationRepo application.Repository,
) *EvaluationService {
	return &EvaluationService{
		evaluationRepo:  evaluationRepo,
		applicationRepo: applicationRepo,
	}
}

// CreateEvaluation opens a pending grid for an application. The caller
// becomes the evaluator; one grid per evaluator and protocol.
func (s *EvaluationService) CreateEvaluation(ctx context.Context, applicationID kernel.ApplicationID, req evaluation.CreateEvaluationRequest, principal *auth.Principal) (*evaluation.Evaluation, error) {
	if !req.Protocol.IsValid() {
		return nil, evaluation.ErrInvalidEvaluationData().
			WithDetail("field", "protocol").
			WithDetail("got", string(req.Protocol))
	}

	// The FK would catch a bad id at insert; resolving it first turns the
	// failure into a proper 404.
	if _, err := s.applicationRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	now := time.Now()
	newEvaluation := &evaluation.Evaluation{
		ID:            kernel.NewEvaluationID(uuid.NewString()),
		ApplicationID: applicationID,
		Protocol:      req.Protocol,
		EvaluatorID:   principal.UserID,
		State:         evaluation.StatePending,
		Scores:        evaluation.PhaseScores{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := newEvaluation.Validate(); err != nil {
		return nil, err
	}

	if err := s.evaluationRepo.Create(ctx, newEvaluation); err != nil {
		return nil, err
	}

	return newEvaluation, nil
}

// ListEvaluations returns an application's evaluations in creation order.
func (s *EvaluationService) ListEvaluations(ctx context.Context, applicationID kernel.ApplicationID) ([]evaluation.Evaluation, error) {
	if _, err := s.applicationRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	evaluations, err := s.evaluationRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list evaluations", errx.TypeInternal)
	}

	return evaluations, nil
}

// UpdateEvaluation merges scores and optionally advances the state. Only the
// evaluator or an admin may touch a grid.
func (s *EvaluationService) UpdateEvaluation(ctx context.Context, id kernel.EvaluationID, req evaluation.UpdateEvaluationRequest, principal *auth.Principal) (*evaluation.Evaluation, error) {
	evaluationEntity, err := s.evaluationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !evaluationEntity.IsEvaluator(principal.UserID) && !principal.HasRole(auth.RoleAdmin) {
		return nil, evaluation.ErrNotEvaluator().
			WithDetail("evaluation_id", id.String())
	}

	if len(req.Scores) > 0 {
		if err := evaluationEntity.RecordScores(req.Scores); err != nil {
			return nil, err
		}
	}

	if req.State != nil && *req.State != evaluationEntity.State {
		if err := evaluationEntity.Transition(*req.State); err != nil {
			return nil, err
		}
	}

	if err := s.evaluationRepo.Update(ctx, evaluationEntity); err != nil {
		return nil, errx.Wrap(err, "failed to update evaluation", errx.TypeInternal)
	}

	return evaluationEntity, nil
}
