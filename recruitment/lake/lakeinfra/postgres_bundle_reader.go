package lakeinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/lake"
	"github.com/meridian-hr/funnel/recruitment/offer"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// PostgresBundleReader implements lake.BundleReader. Load runs all queries
// in one read-only transaction so the projector observes the writer's commit
// as a single snapshot, including the document bytes.
type PostgresBundleReader struct {
	db *sqlx.DB
}

// NewPostgresBundleReader creates a new PostgreSQL bundle reader
func NewPostgresBundleReader(db *sqlx.DB) *PostgresBundleReader {
	return &PostgresBundleReader{
		db: db,
	}
}

// ============================================================================
// Row Models
// ============================================================================

type applicationRow struct {
	ID              string     `db:"id"`
	OfferID         string     `db:"offer_id"`
	CandidateID     string     `db:"candidate_id"`
	Status          string     `db:"status"`
	Management      bool       `db:"management"`
	StatusChangedAt *time.Time `db:"status_changed_at"`
	SubmittedAt     time.Time  `db:"submitted_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type documentRow struct {
	ID           string    `db:"id"`
	DocumentType string    `db:"document_type"`
	FileName     string    `db:"file_name"`
	Content      []byte    `db:"content"`
	MimeType     string    `db:"mime_type"`
	SizeBytes    int64     `db:"size_bytes"`
	UploadedAt   time.Time `db:"uploaded_at"`
}

type answerRow struct {
	Dimension string `db:"dimension"`
	Position  int    `db:"position"`
	Answer    string `db:"answer"`
}

type contactRow struct {
	Position int    `db:"position"`
	Company  string `db:"company"`
	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
}

type candidateRow struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
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

type profileRow struct {
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

type offerRow struct {
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

// ============================================================================
// Bundle Loading
// ============================================================================

// Load reads the application aggregate, the candidate account with its
// optional profile and the offer, in one repeatable snapshot. A missing
// application maps to the typed not-found; everything else the transaction
// guarantees through foreign keys.
func (r *PostgresBundleReader) Load(ctx context.Context, applicationID kernel.ApplicationID) (*lake.Bundle, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin bundle transaction: %w", err)
	}
	defer tx.Rollback()

	app, err := r.loadApplication(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}

	candidate, err := r.loadCandidate(ctx, tx, app.CandidateID)
	if err != nil {
		return nil, err
	}

	profile, err := r.loadProfile(ctx, tx, app.CandidateID)
	if err != nil {
		return nil, err
	}

	offerEntity, err := r.loadOffer(ctx, tx, app.OfferID)
	if err != nil {
		return nil, err
	}

	return &lake.Bundle{
		Application: app,
		Candidate:   candidate,
		Profile:     profile,
		Offer:       offerEntity,
	}, nil
}

func (r *PostgresBundleReader) loadApplication(ctx context.Context, tx *sqlx.Tx, id kernel.ApplicationID) (*application.Application, error) {
	query := `
		SELECT id, offer_id, candidate_id, status, management,
		       status_changed_at, submitted_at, updated_at
		FROM applications
		WHERE id = $1
	`

	var row applicationRow
	if err := tx.GetContext(ctx, &row, query, string(id)); err != nil {
		if err == sql.ErrNoRows {
			return nil, lake.ErrBundleNotFound().WithDetail("application_id", id.String())
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	app := &application.Application{
		ID:              kernel.ApplicationID(row.ID),
		OfferID:         kernel.OfferID(row.OfferID),
		CandidateID:     kernel.UserID(row.CandidateID),
		Status:          application.ApplicationStatus(row.Status),
		Management:      row.Management,
		StatusChangedAt: row.StatusChangedAt,
		SubmittedAt:     row.SubmittedAt,
		UpdatedAt:       row.UpdatedAt,
	}

	documentsQuery := `
		SELECT id, document_type, file_name, content, mime_type, size_bytes, uploaded_at
		FROM application_documents
		WHERE application_id = $1
		ORDER BY uploaded_at, id
	`
	var documents []documentRow
	if err := tx.SelectContext(ctx, &documents, documentsQuery, string(id)); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	for _, doc := range documents {
		app.Documents = append(app.Documents, application.Document{
			ID:            kernel.DocumentID(doc.ID),
			ApplicationID: app.ID,
			Type:          application.DocumentType(doc.DocumentType),
			FileName:      doc.FileName,
			Content:       doc.Content,
			MimeType:      doc.MimeType,
			SizeBytes:     doc.SizeBytes,
			UploadedAt:    doc.UploadedAt,
		})
	}

	answersQuery := `
		SELECT dimension, position, answer
		FROM mtp_answers
		WHERE application_id = $1
		ORDER BY dimension, position
	`
	var answers []answerRow
	if err := tx.SelectContext(ctx, &answers, answersQuery, string(id)); err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	for _, row := range answers {
		switch offer.Dimension(row.Dimension) {
		case offer.DimensionMetier:
			app.Answers.Metier = append(app.Answers.Metier, row.Answer)
		case offer.DimensionTalent:
			app.Answers.Talent = append(app.Answers.Talent, row.Answer)
		case offer.DimensionParadigme:
			app.Answers.Paradigme = append(app.Answers.Paradigme, row.Answer)
		}
	}

	contactsQuery := `
		SELECT position, company, full_name, email, phone
		FROM reference_contacts
		WHERE application_id = $1
		ORDER BY position
	`
	var contacts []contactRow
	if err := tx.SelectContext(ctx, &contacts, contactsQuery, string(id)); err != nil {
		return nil, fmt.Errorf("failed to load reference contacts: %w", err)
	}
	for _, row := range contacts {
		app.Contacts = append(app.Contacts, application.ReferenceContact{
			Company:  row.Company,
			FullName: row.FullName,
			Email:    row.Email,
			Phone:    row.Phone,
		})
	}

	return app, nil
}

func (r *PostgresBundleReader) loadCandidate(ctx context.Context, tx *sqlx.Tx, id kernel.UserID) (*user.User, error) {
	query := `
		SELECT id, email, role, status, first_name, last_name, phone, sexe,
		       date_of_birth, matricule, candidate_status, no_corporate_email,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var row candidateRow
	if err := tx.GetContext(ctx, &row, query, string(id)); err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	var candidateStatus auth.CandidateStatus
	if row.CandidateStatus != nil {
		candidateStatus = auth.CandidateStatus(*row.CandidateStatus)
	}

	return &user.User{
		ID:               kernel.UserID(row.ID),
		Email:            kernel.Email(row.Email),
		Role:             auth.Role(row.Role),
		Status:           auth.UserStatus(row.Status),
		FirstName:        kernel.FirstName(row.FirstName),
		LastName:         kernel.LastName(row.LastName),
		Phone:            kernel.Phone(row.Phone),
		Sexe:             user.Sexe(row.Sexe),
		DateOfBirth:      row.DateOfBirth,
		Matricule:        row.Matricule,
		CandidateStatus:  candidateStatus,
		NoCorporateEmail: row.NoCorporateEmail,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

func (r *PostgresBundleReader) loadProfile(ctx context.Context, tx *sqlx.Tx, userID kernel.UserID) (*user.CandidateProfile, error) {
	query := `
		SELECT user_id, skills, years_experience, expected_salary_min,
		       expected_salary_max, salary_currency, education, availability,
		       portfolio_url, linkedin_url, updated_at
		FROM candidate_profiles
		WHERE user_id = $1
	`

	var row profileRow
	if err := tx.GetContext(ctx, &row, query, string(userID)); err != nil {
		// No profile is a legal state for the dimension document.
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load candidate profile: %w", err)
	}

	var skills []string
	if len(row.Skills) > 0 {
		if err := json.Unmarshal(row.Skills, &skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
		}
	}

	return &user.CandidateProfile{
		UserID:            kernel.UserID(row.UserID),
		Skills:            skills,
		YearsExperience:   row.YearsExperience,
		ExpectedSalaryMin: row.ExpectedSalaryMin,
		ExpectedSalaryMax: row.ExpectedSalaryMax,
		SalaryCurrency:    row.SalaryCurrency,
		Education:         row.Education,
		Availability:      row.Availability,
		PortfolioURL:      row.PortfolioURL,
		LinkedinURL:       row.LinkedinURL,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func (r *PostgresBundleReader) loadOffer(ctx context.Context, tx *sqlx.Tx, id kernel.OfferID) (*offer.Offer, error) {
	query := `
		SELECT id, created_by, title, description, location, department,
		       contract_type, salary_min, salary_max, salary_currency, visibility,
		       metier_questions, talent_questions, paradigme_questions,
		       status, published_at, closed_at, created_at, updated_at
		FROM job_offers
		WHERE id = $1
	`

	var row offerRow
	if err := tx.GetContext(ctx, &row, query, string(id)); err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	var questions offer.MTPQuestions
	for _, col := range []struct {
		raw  json.RawMessage
		dest *[]string
		name string
	}{
		{row.MetierQuestions, &questions.Metier, "metier_questions"},
		{row.TalentQuestions, &questions.Talent, "talent_questions"},
		{row.ParadigmeQuestions, &questions.Paradigme, "paradigme_questions"},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", col.name, err)
		}
	}

	return &offer.Offer{
		ID:             kernel.OfferID(row.ID),
		CreatedBy:      kernel.UserID(row.CreatedBy),
		Title:          row.Title,
		Description:    row.Description,
		Location:       row.Location,
		Department:     row.Department,
		ContractType:   offer.ContractType(row.ContractType),
		SalaryMin:      row.SalaryMin,
		SalaryMax:      row.SalaryMax,
		SalaryCurrency: row.SalaryCurrency,
		Visibility:     offer.Visibility(row.Visibility),
		Questions:      questions,
		Status:         offer.OfferStatus(row.Status),
		PublishedAt:    row.PublishedAt,
		ClosedAt:       row.ClosedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}
