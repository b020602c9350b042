package userinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// PostgresUserRepository implements user.Repository using PostgreSQL
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// ============================================================================
// Database Models
// ============================================================================

type userModel struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	Role             string     `db:"role"`
	Status           string     `db:"status"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	Phone            string     `db:"phone"`
	Sexe             string     `db:"sexe"`
	DateOfBirth      *time.Time `db:"date_of_birth"`
	Matricule        *int       `db:"matricule"`
	CandidateStatus  *string    `db:"candidate_status"`
	NoCorporateEmail bool       `db:"no_corporate_email"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *userModel) toEntity() *user.User {
	var candidateStatus auth.CandidateStatus
	if m.CandidateStatus != nil {
		candidateStatus = auth.CandidateStatus(*m.CandidateStatus)
	}

	return &user.User{
		ID:               kernel.UserID(m.ID),
		Email:            kernel.Email(m.Email),
		PasswordHash:     m.PasswordHash,
		Role:             auth.Role(m.Role),
		Status:           auth.UserStatus(m.Status),
		FirstName:        kernel.FirstName(m.FirstName),
		LastName:         kernel.LastName(m.LastName),
		Phone:            kernel.Phone(m.Phone),
		Sexe:             user.Sexe(m.Sexe),
		DateOfBirth:      m.DateOfBirth,
		Matricule:        m.Matricule,
		CandidateStatus:  candidateStatus,
		NoCorporateEmail: m.NoCorporateEmail,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(u *user.User) *userModel {
	var candidateStatus *string
	if u.CandidateStatus != "" {
		cs := string(u.CandidateStatus)
		candidateStatus = &cs
	}

	return &userModel{
		ID:               string(u.ID),
		Email:            string(u.Email),
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		Status:           string(u.Status),
		FirstName:        string(u.FirstName),
		LastName:         string(u.LastName),
		Phone:            string(u.Phone),
		Sexe:             string(u.Sexe),
		DateOfBirth:      u.DateOfBirth,
		Matricule:        u.Matricule,
		CandidateStatus:  candidateStatus,
		NoCorporateEmail: u.NoCorporateEmail,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// mapUniqueViolation translates unique constraint violations into typed
// conflicts. The constraint names come from the users table definition.
func mapUniqueViolation(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}

	switch pqErr.Constraint {
	case "users_email_key":
		return user.ErrEmailAlreadyExists()
	case "users_matricule_key":
		return user.ErrMatriculeAlreadyExists()
	default:
		return user.ErrEmailAlreadyExists()
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

const insertUserQuery = `
	INSERT INTO users (
		id, email, password_hash, role, status,
		first_name, last_name, phone, sexe, date_of_birth,
		matricule, candidate_status, no_corporate_email,
		created_at, updated_at
	) VALUES (
		:id, :email, :password_hash, :role, :status,
		:first_name, :last_name, :phone, :sexe, :date_of_birth,
		:matricule, :candidate_status, :no_corporate_email,
		:created_at, :updated_at
	)
`

const selectUserColumns = `
	id, email, password_hash, role, status,
	first_name, last_name, phone, sexe, date_of_birth,
	matricule, candidate_status, no_corporate_email,
	created_at, updated_at
`

// Create creates a new user account
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	model := fromEntity(u)

	_, err := r.db.NamedExecContext(ctx, insertUserQuery, model)
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// CreateCandidate creates a candidate account, its profile and, for pending
// accounts, the access request in a single transaction.
func (r *PostgresUserRepository) CreateCandidate(ctx context.Context, u *user.User, profile *user.CandidateProfile, request *user.AccessRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin signup transaction: %w", err)
	}
	defer tx.Rollback()

	model := fromEntity(u)
	if _, err := tx.NamedExecContext(ctx, insertUserQuery, model); err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create candidate account: %w", err)
	}

	if profile != nil {
		profileModel, err := fromProfileEntity(profile)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertProfileQuery, profileModel); err != nil {
			return fmt.Errorf("failed to create candidate profile: %w", err)
		}
	}

	if request != nil {
		requestModel := fromAccessRequestEntity(request)
		if _, err := tx.NamedExecContext(ctx, insertAccessRequestQuery, requestModel); err != nil {
			return fmt.Errorf("failed to create access request: %w", err)
		}
	}

	return tx.Commit()
}

// Update updates an existing user account
func (r *PostgresUserRepository) Update(ctx context.Context, u *user.User) error {
	model := fromEntity(u)

	query := `
		UPDATE users SET
			email = :email,
			password_hash = :password_hash,
			role = :role,
			status = :status,
			first_name = :first_name,
			last_name = :last_name,
			phone = :phone,
			sexe = :sexe,
			date_of_birth = :date_of_birth,
			matricule = :matricule,
			candidate_status = :candidate_status,
			no_corporate_email = :no_corporate_email,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return user.ErrUserNotFound()
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, selectUserColumns)

	var model userModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound()
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return model.toEntity(), nil
}

// GetByEmail retrieves a user by normalized email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email kernel.Email) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, selectUserColumns)

	var model userModel
	err := r.db.GetContext(ctx, &model, query, string(email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound()
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toEntity(), nil
}

// List retrieves users filtered by role and status with pagination
func (r *PostgresUserRepository) List(ctx context.Context, req user.ListUsersRequest) (*kernel.Paginated[user.User], error) {
	// Build dynamic filters
	whereConditions := []string{}
	args := []interface{}{}
	argCount := 1

	if req.Role != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("role = $%d", argCount))
		args = append(args, string(req.Role))
		argCount++
	}

	if req.Status != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, string(req.Status))
		argCount++
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + whereConditions[0]
		for i := 1; i < len(whereConditions); i++ {
			whereClause += " AND " + whereConditions[i]
		}
	}

	// Count total
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	// Calculate pagination
	offset := (req.Pagination.Page - 1) * req.Pagination.PageSize
	totalPages := (total + req.Pagination.PageSize - 1) / req.Pagination.PageSize

	// Get paginated results
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, selectUserColumns, whereClause, argCount, argCount+1)

	args = append(args, req.Pagination.PageSize, offset)

	var models []userModel
	err := r.db.SelectContext(ctx, &models, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	// Convert to entities
	entities := make([]user.User, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	return &kernel.Paginated[user.User]{
		Items: entities,
		Page: kernel.Page{
			Number: req.Pagination.Page,
			Size:   req.Pagination.PageSize,
			Total:  total,
			Pages:  totalPages,
		},
		Empty: len(entities) == 0,
	}, nil
}
