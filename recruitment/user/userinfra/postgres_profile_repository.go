package userinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// PostgresProfileRepository implements user.ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	db *sqlx.DB
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type profileModel struct {
	UserID            string          `db:"user_id"`
	Skills            json.RawMessage `db:"skills"`
	YearsExperience   int             `db:"years_experience"`
	ExpectedSalaryMin *int            `db:"expected_salary_min"`
	ExpectedSalaryMax *int            `db:"expected_salary_max"`
	SalaryCurrency    string          `db:"salary_currency"`
	Education         string          `db:"education"`
	Availability      string          `db:"availability"`
	PortfolioURL      string          `db:"portfolio_url"`
	LinkedinURL       string          `db:"linkedin_url"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *profileModel) toEntity() (*user.CandidateProfile, error) {
	var skills []string
	if len(m.Skills) > 0 {
		if err := json.Unmarshal(m.Skills, &skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
		}
	}

	return &user.CandidateProfile{
		UserID:            kernel.UserID(m.UserID),
		Skills:            skills,
		YearsExperience:   m.YearsExperience,
		ExpectedSalaryMin: m.ExpectedSalaryMin,
		ExpectedSalaryMax: m.ExpectedSalaryMax,
		SalaryCurrency:    m.SalaryCurrency,
		Education:         m.Education,
		Availability:      m.Availability,
		PortfolioURL:      m.PortfolioURL,
		LinkedinURL:       m.LinkedinURL,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// fromProfileEntity converts domain entity to database model
func fromProfileEntity(p *user.CandidateProfile) (*profileModel, error) {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	rawSkills, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}

	return &profileModel{
		UserID:            string(p.UserID),
		Skills:            rawSkills,
		YearsExperience:   p.YearsExperience,
		ExpectedSalaryMin: p.ExpectedSalaryMin,
		ExpectedSalaryMax: p.ExpectedSalaryMax,
		SalaryCurrency:    p.SalaryCurrency,
		Education:         p.Education,
		Availability:      p.Availability,
		PortfolioURL:      p.PortfolioURL,
		LinkedinURL:       p.LinkedinURL,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

// ============================================================================
// Repository Implementation
// ============================================================================

const upsertProfileQuery = `
	INSERT INTO candidate_profiles (
		user_id, skills, years_experience, expected_salary_min,
		expected_salary_max, salary_currency, education, availability,
		portfolio_url, linkedin_url, updated_at
	) VALUES (
		:user_id, :skills, :years_experience, :expected_salary_min,
		:expected_salary_max, :salary_currency, :education, :availability,
		:portfolio_url, :linkedin_url, :updated_at
	)
	ON CONFLICT (user_id) DO UPDATE SET
		skills = EXCLUDED.skills,
		years_experience = EXCLUDED.years_experience,
		expected_salary_min = EXCLUDED.expected_salary_min,
		expected_salary_max = EXCLUDED.expected_salary_max,
		salary_currency = EXCLUDED.salary_currency,
		education = EXCLUDED.education,
		availability = EXCLUDED.availability,
		portfolio_url = EXCLUDED.portfolio_url,
		linkedin_url = EXCLUDED.linkedin_url,
		updated_at = EXCLUDED.updated_at
`

// Upsert inserts or replaces the profile of a candidate
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *user.CandidateProfile) error {
	model, err := fromProfileEntity(p)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, upsertProfileQuery, model)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves the profile of a candidate
func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID kernel.UserID) (*user.CandidateProfile, error) {
	query := `
		SELECT
			user_id, skills, years_experience, expected_salary_min,
			expected_salary_max, salary_currency, education, availability,
			portfolio_url, linkedin_url, updated_at
		FROM candidate_profiles
		WHERE user_id = $1
	`

	var model profileModel
	err := r.db.GetContext(ctx, &model, query, string(userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrProfileNotFound()
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}

	return model.toEntity()
}
