package evaluationinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/evaluation"
)

// PostgresEvaluationRepository implements evaluation.Repository using
// PostgreSQL. Phase scores are stored as a JSON column; the aggregate is
// denormalized so listings never recompute it.
type PostgresEvaluationRepository struct {
	db *sqlx.DB
}

// NewPostgresEvaluationRepository creates a new PostgreSQL evaluation repository
func NewPostgresEvaluationRepository(db *sqlx.DB) *PostgresEvaluationRepository {
	return &PostgresEvaluationRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type evaluationModel struct {
	ID            string          `db:"id"`
	ApplicationID string          `db:"application_id"`
	Protocol      string          `db:"protocol"`
	EvaluatorID   string          `db:"evaluator_id"`
	State         string          `db:"state"`
	Scores        json.RawMessage `db:"scores"`
	Aggregate     *float64        `db:"aggregate"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *evaluationModel) toEntity() (*evaluation.Evaluation, error) {
	scores := evaluation.PhaseScores{}
	if len(m.Scores) > 0 {
		if err := json.Unmarshal(m.Scores, &scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
		}
	}

	return &evaluation.Evaluation{
		ID:            kernel.EvaluationID(m.ID),
		ApplicationID: kernel.ApplicationID(m.ApplicationID),
		Protocol:      evaluation.Protocol(m.Protocol),
		EvaluatorID:   kernel.UserID(m.EvaluatorID),
		State:         evaluation.EvaluationState(m.State),
		Scores:        scores,
		Aggregate:     m.Aggregate,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// fromEntity converts domain entity to database model
func fromEntity(e *evaluation.Evaluation) (*evaluationModel, error) {
	scores := e.Scores
	if scores == nil {
		scores = evaluation.PhaseScores{}
	}
	raw, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scores: %w", err)
	}

	return &evaluationModel{
		ID:            string(e.ID),
		ApplicationID: string(e.ApplicationID),
		Protocol:      string(e.Protocol),
		EvaluatorID:   string(e.EvaluatorID),
		State:         string(e.State),
		Scores:        raw,
		Aggregate:     e.Aggregate,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}, nil
}

// ============================================================================
// Repository Implementation
// ============================================================================

const selectEvaluationColumns = `
	id, application_id, protocol, evaluator_id, state, scores, aggregate,
	created_at, updated_at
`

// Create stores a new evaluation
func (r *PostgresEvaluationRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	model, err := fromEntity(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evaluations (
			id, application_id, protocol, evaluator_id, state, scores,
			aggregate, created_at, updated_at
		) VALUES (
			:id, :application_id, :protocol, :evaluator_id, :state, :scores,
			:aggregate, :created_at, :updated_at
		)
	`

	_, err = r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return evaluation.ErrDuplicateEvaluation().
				WithDetail("application_id", string(e.ApplicationID)).
				WithDetail("protocol", string(e.Protocol))
		}
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	return nil
}

// GetByID retrieves an evaluation by ID
func (r *PostgresEvaluationRepository) GetByID(ctx context.Context, id kernel.EvaluationID) (*evaluation.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE id = $1`, selectEvaluationColumns)

	var model evaluationModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, evaluation.ErrEvaluationNotFound()
		}
		return nil, fmt.Errorf("failed to get evaluation by id: %w", err)
	}

	return model.toEntity()
}

// ListByApplication returns an application's evaluations in creation order
func (r *PostgresEvaluationRepository) ListByApplication(ctx context.Context, applicationID kernel.ApplicationID) ([]evaluation.Evaluation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM evaluations
		WHERE application_id = $1
		ORDER BY created_at ASC
	`, selectEvaluationColumns)

	var models []evaluationModel
	if err := r.db.SelectContext(ctx, &models, query, string(applicationID)); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	entities := make([]evaluation.Evaluation, 0, len(models))
	for i := range models {
		entity, err := models[i].toEntity()
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}

	return entities, nil
}

// Update persists score and state changes of an existing evaluation
func (r *PostgresEvaluationRepository) Update(ctx context.Context, e *evaluation.Evaluation) error {
	model, err := fromEntity(e)
	if err != nil {
		return err
	}

	query := `
		UPDATE evaluations SET
			state = :state,
			scores = :scores,
			aggregate = :aggregate,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update evaluation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return evaluation.ErrEvaluationNotFound()
	}

	return nil
}
