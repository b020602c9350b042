package lakeinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/lake"
)

// PostgresReconciliationRepository implements lake.ReconciliationRepository
// using PostgreSQL. A partial unique index keeps one pending record per
// application; repeated failures fold into it via upsert.
type PostgresReconciliationRepository struct {
	db *sqlx.DB
}

// NewPostgresReconciliationRepository creates a new PostgreSQL reconciliation repository
func NewPostgresReconciliationRepository(db *sqlx.DB) *PostgresReconciliationRepository {
	return &PostgresReconciliationRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type reconciliationModel struct {
	ID            string    `db:"id"`
	ApplicationID string    `db:"application_id"`
	Reason        string    `db:"reason"`
	Attempts      int       `db:"attempts"`
	LastError     string    `db:"last_error"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m *reconciliationModel) toEntity() *lake.ReconciliationRecord {
	return &lake.ReconciliationRecord{
		ID:            kernel.ReconciliationID(m.ID),
		ApplicationID: kernel.ApplicationID(m.ApplicationID),
		Reason:        m.Reason,
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		Status:        lake.ReconciliationStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromEntity(rec *lake.ReconciliationRecord) *reconciliationModel {
	return &reconciliationModel{
		ID:            string(rec.ID),
		ApplicationID: string(rec.ApplicationID),
		Reason:        rec.Reason,
		Attempts:      rec.Attempts,
		LastError:     rec.LastError,
		Status:        string(rec.Status),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

const upsertReconciliationQuery = `
	INSERT INTO reconciliation_records (
		id, application_id, reason, attempts, last_error, status,
		created_at, updated_at
	) VALUES (
		:id, :application_id, :reason, :attempts, :last_error, :status,
		:created_at, :updated_at
	)
	ON CONFLICT (application_id) WHERE status = 'pending'
	DO UPDATE SET
		reason = EXCLUDED.reason,
		attempts = reconciliation_records.attempts + EXCLUDED.attempts,
		last_error = EXCLUDED.last_error,
		updated_at = EXCLUDED.updated_at
`

// Upsert inserts a pending record or folds the failure into the existing
// pending one, accumulating the attempt count.
func (r *PostgresReconciliationRepository) Upsert(ctx context.Context, rec *lake.ReconciliationRecord) error {
	if _, err := r.db.NamedExecContext(ctx, upsertReconciliationQuery, fromEntity(rec)); err != nil {
		return fmt.Errorf("failed to upsert reconciliation record: %w", err)
	}
	return nil
}

// List retrieves reconciliation records, newest activity first.
func (r *PostgresReconciliationRepository) List(ctx context.Context, req lake.ListReconciliationRequest) (*kernel.Paginated[lake.ReconciliationRecord], error) {
	whereClause := ""
	args := []interface{}{}
	argCount := 1

	if req.Status != "" {
		whereClause = fmt.Sprintf("WHERE status = $%d", argCount)
		args = append(args, string(req.Status))
		argCount++
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reconciliation_records %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count reconciliation records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, application_id, reason, attempts, last_error, status,
		       created_at, updated_at
		FROM reconciliation_records
		%s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)

	args = append(args, req.Pagination.PageSize, req.Pagination.Offset())

	var models []reconciliationModel
	if err := r.db.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reconciliation records: %w", err)
	}

	items := make([]lake.ReconciliationRecord, 0, len(models))
	for i := range models {
		items = append(items, *models[i].toEntity())
	}

	page := kernel.NewPage(req.Pagination, total)
	return &kernel.Paginated[lake.ReconciliationRecord]{
		Items: items,
		Page:  page,
		Empty: len(items) == 0,
	}, nil
}

// MarkReplayed resolves the pending record for an application. No pending
// record is not an error: replays may target never-failed applications.
func (r *PostgresReconciliationRepository) MarkReplayed(ctx context.Context, applicationID kernel.ApplicationID) error {
	query := `
		UPDATE reconciliation_records
		SET status = $2, updated_at = $3
		WHERE application_id = $1 AND status = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		string(applicationID),
		string(lake.ReconciliationReplayed),
		time.Now(),
		string(lake.ReconciliationPending),
	)
	if err != nil {
		return fmt.Errorf("failed to mark reconciliation record replayed: %w", err)
	}

	return nil
}
