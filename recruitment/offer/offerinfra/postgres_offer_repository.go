package offerinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

// PostgresOfferRepository implements offer.Repository using PostgreSQL
type PostgresOfferRepository struct {
	db *sqlx.DB
}

// NewPostgresOfferRepository creates a new PostgreSQL offer repository
func NewPostgresOfferRepository(db *sqlx.DB) *PostgresOfferRepository {
	return &PostgresOfferRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type offerModel struct {
	ID                 string          `db:"id"`
	CreatedBy          string          `db:"created_by"`
	Title              string          `db:"title"`
	Description        string          `db:"description"`
	Location           string          `db:"location"`
	Department         string          `db:"department"`
	ContractType       string          `db:"contract_type"`
	SalaryMin          *int            `db:"salary_min"`
	SalaryMax          *int            `db:"salary_max"`
	SalaryCurrency     string          `db:"salary_currency"`
	Visibility         string          `db:"visibility"`
	MetierQuestions    json.RawMessage `db:"metier_questions"`
	TalentQuestions    json.RawMessage `db:"talent_questions"`
	ParadigmeQuestions json.RawMessage `db:"paradigme_questions"`
	Status             string          `db:"status"`
	PublishedAt        *time.Time      `db:"published_at"`
	ClosedAt           *time.Time      `db:"closed_at"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *offerModel) toEntity() (*offer.Offer, error) {
	var questions offer.MTPQuestions
	for _, col := range []struct {
		raw  json.RawMessage
		dest *[]string
		name string
	}{
		{m.MetierQuestions, &questions.Metier, "metier_questions"},
		{m.TalentQuestions, &questions.Talent, "talent_questions"},
		{m.ParadigmeQuestions, &questions.Paradigme, "paradigme_questions"},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", col.name, err)
		}
	}

	return &offer.Offer{
		ID:             kernel.OfferID(m.ID),
		CreatedBy:      kernel.UserID(m.CreatedBy),
		Title:          m.Title,
		Description:    m.Description,
		Location:       m.Location,
		Department:     m.Department,
		ContractType:   offer.ContractType(m.ContractType),
		SalaryMin:      m.SalaryMin,
		SalaryMax:      m.SalaryMax,
		SalaryCurrency: m.SalaryCurrency,
		Visibility:     offer.Visibility(m.Visibility),
		Questions:      questions,
		Status:         offer.OfferStatus(m.Status),
		PublishedAt:    m.PublishedAt,
		ClosedAt:       m.ClosedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// fromEntity converts domain entity to database model
func fromEntity(o *offer.Offer) (*offerModel, error) {
	marshal := func(questions []string) (json.RawMessage, error) {
		if questions == nil {
			questions = []string{}
		}
		return json.Marshal(questions)
	}

	metier, err := marshal(o.Questions.Metier)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metier questions: %w", err)
	}
	talent, err := marshal(o.Questions.Talent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal talent questions: %w", err)
	}
	paradigme, err := marshal(o.Questions.Paradigme)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal paradigme questions: %w", err)
	}

	return &offerModel{
		ID:                 string(o.ID),
		CreatedBy:          string(o.CreatedBy),
		Title:              o.Title,
		Description:        o.Description,
		Location:           o.Location,
		Department:         o.Department,
		ContractType:       string(o.ContractType),
		SalaryMin:          o.SalaryMin,
		SalaryMax:          o.SalaryMax,
		SalaryCurrency:     o.SalaryCurrency,
		Visibility:         string(o.Visibility),
		MetierQuestions:    metier,
		TalentQuestions:    talent,
		ParadigmeQuestions: paradigme,
		Status:             string(o.Status),
		PublishedAt:        o.PublishedAt,
		ClosedAt:           o.ClosedAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}, nil
}

// ============================================================================
// Repository Implementation
// ============================================================================

const selectOfferColumns = `
	id, created_by, title, description, location, department,
	contract_type, salary_min, salary_max, salary_currency, visibility,
	metier_questions, talent_questions, paradigme_questions,
	status, published_at, closed_at, created_at, updated_at
`

// Create creates a new offer
func (r *PostgresOfferRepository) Create(ctx context.Context, offerEntity *offer.Offer) error {
	model, err := fromEntity(offerEntity)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO job_offers (
			id, created_by, title, description, location, department,
			contract_type, salary_min, salary_max, salary_currency, visibility,
			metier_questions, talent_questions, paradigme_questions,
			status, published_at, closed_at, created_at, updated_at
		) VALUES (
			:id, :created_by, :title, :description, :location, :department,
			:contract_type, :salary_min, :salary_max, :salary_currency, :visibility,
			:metier_questions, :talent_questions, :paradigme_questions,
			:status, :published_at, :closed_at, :created_at, :updated_at
		)
	`

	_, err = r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("invalid created_by user id: %w", err)
		}
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

// Update updates an existing offer
func (r *PostgresOfferRepository) Update(ctx context.Context, offerEntity *offer.Offer) error {
	model, err := fromEntity(offerEntity)
	if err != nil {
		return err
	}

	query := `
		UPDATE job_offers SET
			title = :title,
			description = :description,
			location = :location,
			department = :department,
			contract_type = :contract_type,
			salary_min = :salary_min,
			salary_max = :salary_max,
			salary_currency = :salary_currency,
			visibility = :visibility,
			metier_questions = :metier_questions,
			talent_questions = :talent_questions,
			paradigme_questions = :paradigme_questions,
			status = :status,
			published_at = :published_at,
			closed_at = :closed_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return offer.ErrOfferNotFound()
	}

	return nil
}

// GetByID retrieves an offer by ID
func (r *PostgresOfferRepository) GetByID(ctx context.Context, id kernel.OfferID) (*offer.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM job_offers WHERE id = $1`, selectOfferColumns)

	var model offerModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, offer.ErrOfferNotFound()
		}
		return nil, fmt.Errorf("failed to get offer by id: %w", err)
	}

	return model.toEntity()
}

// List retrieves offers matching the request filters with pagination
func (r *PostgresOfferRepository) List(ctx context.Context, req offer.ListOffersRequest) (*kernel.Paginated[offer.Offer], error) {
	// Build dynamic filters
	whereConditions := []string{}
	args := []interface{}{}
	argCount := 1

	if req.ContractType != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("contract_type = $%d", argCount))
		args = append(args, string(req.ContractType))
		argCount++
	}

	if req.Department != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("department ILIKE $%d", argCount))
		args = append(args, "%"+req.Department+"%")
		argCount++
	}

	if req.Search != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+req.Search+"%")
		argCount++
	}

	if req.Status != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, string(req.Status))
		argCount++
	}

	if len(req.Statuses) > 0 {
		statuses := make([]string, 0, len(req.Statuses))
		for _, s := range req.Statuses {
			statuses = append(statuses, string(s))
		}
		whereConditions = append(whereConditions, fmt.Sprintf("status = ANY($%d)", argCount))
		args = append(args, pq.Array(statuses))
		argCount++
	}

	if len(req.Visibilities) > 0 {
		visibilities := make([]string, 0, len(req.Visibilities))
		for _, v := range req.Visibilities {
			visibilities = append(visibilities, string(v))
		}
		whereConditions = append(whereConditions, fmt.Sprintf("visibility = ANY($%d)", argCount))
		args = append(args, pq.Array(visibilities))
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM job_offers %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count offers: %w", err)
	}

	// Calculate pagination
	offset := (req.Pagination.Page - 1) * req.Pagination.PageSize
	totalPages := (total + req.Pagination.PageSize - 1) / req.Pagination.PageSize

	// Get paginated results
	query := fmt.Sprintf(`
		SELECT %s
		FROM job_offers
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, selectOfferColumns, whereClause, argCount, argCount+1)

	args = append(args, req.Pagination.PageSize, offset)

	var models []offerModel
	err := r.db.SelectContext(ctx, &models, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	// Convert to entities
	entities := make([]offer.Offer, 0, len(models))
	for _, model := range models {
		entity, err := model.toEntity()
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}

	return &kernel.Paginated[offer.Offer]{
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

// Delete deletes an offer by ID
func (r *PostgresOfferRepository) Delete(ctx context.Context, id kernel.OfferID) error {
	query := `DELETE FROM job_offers WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return offer.ErrOfferNotFound()
	}

	return nil
}

// Stats counts offers per lifecycle state
func (r *PostgresOfferRepository) Stats(ctx context.Context) (*offer.StatsResponse, error) {
	query := `SELECT status, COUNT(*) AS count FROM job_offers GROUP BY status`

	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count offers by status: %w", err)
	}

	stats := &offer.StatsResponse{}
	for _, row := range rows {
		stats.Total += row.Count
		switch offer.OfferStatus(row.Status) {
		case offer.StatusDraft:
			stats.Draft = row.Count
		case offer.StatusOpen:
			stats.Open = row.Count
		case offer.StatusClosed:
			stats.Closed = row.Count
		}
	}

	return stats, nil
}
