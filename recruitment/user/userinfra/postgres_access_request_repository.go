package userinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// PostgresAccessRequestRepository implements user.AccessRequestRepository
// using PostgreSQL
type PostgresAccessRequestRepository struct {
	db *sqlx.DB
}

// NewPostgresAccessRequestRepository creates a new PostgreSQL access request repository
func NewPostgresAccessRequestRepository(db *sqlx.DB) *PostgresAccessRequestRepository {
	return &PostgresAccessRequestRepository{
		db: db,
	}
}

// ============================================================================
// Database Models
// ============================================================================

type accessRequestModel struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	Status     string     `db:"status"`
	ApproverID *string    `db:"approver_id"`
	ResolvedAt *time.Time `db:"resolved_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

// accessRequestWithUserModel for joined listings
type accessRequestWithUserModel struct {
	accessRequestModel
	Email            string  `db:"email"`
	Role             string  `db:"role"`
	UserStatus       string  `db:"user_status"`
	FirstName        string  `db:"first_name"`
	LastName         string  `db:"last_name"`
	Phone            string  `db:"phone"`
	Sexe             string  `db:"sexe"`
	Matricule        *int    `db:"matricule"`
	CandidateStatus  *string `db:"candidate_status"`
	NoCorporateEmail bool    `db:"no_corporate_email"`
}

// toEntity converts database model to domain entity
func (m *accessRequestModel) toEntity() *user.AccessRequest {
	var approverID *kernel.UserID
	if m.ApproverID != nil {
		uid := kernel.UserID(*m.ApproverID)
		approverID = &uid
	}

	return &user.AccessRequest{
		ID:         kernel.AccessRequestID(m.ID),
		UserID:     kernel.UserID(m.UserID),
		Status:     user.AccessRequestStatus(m.Status),
		ApproverID: approverID,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
	}
}

// toResponse converts joined model to the listing response
func (m *accessRequestWithUserModel) toResponse() *user.AccessRequestResponse {
	var candidateStatus auth.CandidateStatus
	if m.CandidateStatus != nil {
		candidateStatus = auth.CandidateStatus(*m.CandidateStatus)
	}

	return &user.AccessRequestResponse{
		AccessRequest: *m.accessRequestModel.toEntity(),
		User: user.UserResponse{
			ID:               kernel.UserID(m.UserID),
			Email:            kernel.Email(m.Email),
			Role:             auth.Role(m.Role),
			Status:           auth.UserStatus(m.UserStatus),
			FirstName:        kernel.FirstName(m.FirstName),
			LastName:         kernel.LastName(m.LastName),
			Phone:            kernel.Phone(m.Phone),
			Sexe:             user.Sexe(m.Sexe),
			Matricule:        m.Matricule,
			CandidateStatus:  candidateStatus,
			NoCorporateEmail: m.NoCorporateEmail,
		},
	}
}

// fromAccessRequestEntity converts domain entity to database model
func fromAccessRequestEntity(a *user.AccessRequest) *accessRequestModel {
	var approverID *string
	if a.ApproverID != nil {
		uid := string(*a.ApproverID)
		approverID = &uid
	}

	return &accessRequestModel{
		ID:         string(a.ID),
		UserID:     string(a.UserID),
		Status:     string(a.Status),
		ApproverID: approverID,
		ResolvedAt: a.ResolvedAt,
		CreatedAt:  a.CreatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

const insertAccessRequestQuery = `
	INSERT INTO access_requests (
		id, user_id, status, approver_id, resolved_at, created_at
	) VALUES (
		:id, :user_id, :status, :approver_id, :resolved_at, :created_at
	)
`

// Update persists a resolved access request
func (r *PostgresAccessRequestRepository) Update(ctx context.Context, request *user.AccessRequest) error {
	model := fromAccessRequestEntity(request)

	query := `
		UPDATE access_requests SET
			status = :status,
			approver_id = :approver_id,
			resolved_at = :resolved_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update access request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return user.ErrAccessRequestNotFound()
	}

	return nil
}

// GetByID retrieves an access request by ID
func (r *PostgresAccessRequestRepository) GetByID(ctx context.Context, id kernel.AccessRequestID) (*user.AccessRequest, error) {
	query := `
		SELECT id, user_id, status, approver_id, resolved_at, created_at
		FROM access_requests
		WHERE id = $1
	`

	var model accessRequestModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrAccessRequestNotFound()
		}
		return nil, fmt.Errorf("failed to get access request by id: %w", err)
	}

	return model.toEntity(), nil
}

// GetPendingByUserID retrieves the open access request of a user
func (r *PostgresAccessRequestRepository) GetPendingByUserID(ctx context.Context, userID kernel.UserID) (*user.AccessRequest, error) {
	query := `
		SELECT id, user_id, status, approver_id, resolved_at, created_at
		FROM access_requests
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var model accessRequestModel
	err := r.db.GetContext(ctx, &model, query, string(userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrAccessRequestNotFound()
		}
		return nil, fmt.Errorf("failed to get pending access request: %w", err)
	}

	return model.toEntity(), nil
}

// ListPending retrieves open access requests with the requesting account joined
func (r *PostgresAccessRequestRepository) ListPending(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[user.AccessRequestResponse], error) {
	// Count total
	var total int
	countQuery := `SELECT COUNT(*) FROM access_requests WHERE status = 'pending'`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, fmt.Errorf("failed to count pending access requests: %w", err)
	}

	// Calculate pagination
	offset := (pagination.Page - 1) * pagination.PageSize
	totalPages := (total + pagination.PageSize - 1) / pagination.PageSize

	// Get paginated results with the requesting user
	query := `
		SELECT
			a.id, a.user_id, a.status, a.approver_id, a.resolved_at, a.created_at,
			u.email,
			u.role,
			u.status AS user_status,
			u.first_name,
			u.last_name,
			u.phone,
			u.sexe,
			u.matricule,
			u.candidate_status,
			u.no_corporate_email
		FROM access_requests a
		INNER JOIN users u ON a.user_id = u.id
		WHERE a.status = 'pending'
		ORDER BY a.created_at ASC
		LIMIT $1 OFFSET $2
	`

	var models []accessRequestWithUserModel
	err := r.db.SelectContext(ctx, &models, query, pagination.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending access requests: %w", err)
	}

	// Convert to response DTOs
	responses := make([]user.AccessRequestResponse, 0, len(models))
	for _, model := range models {
		responses = append(responses, *model.toResponse())
	}

	return &kernel.Paginated[user.AccessRequestResponse]{
		Items: responses,
		Page: kernel.Page{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
			Pages:  totalPages,
		},
		Empty: len(responses) == 0,
	}, nil
}
