package applicationinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

// PostgresApplicationRepository implements application.Repository using
// PostgreSQL. The aggregate spans four tables: applications,
// application_documents, mtp_answers and reference_contacts; Submit writes
// all of them in one transaction.
type PostgresApplicationRepository struct {
	db *sqlx.DB
}

// NewPostgresApplicationRepository creates a new PostgreSQL application repository
func NewPostgresApplicationRepository(db *sqlx.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{
		db: db,
	}
}

// ============================================================================
// Database Models
// ============================================================================

type applicationModel struct {
	ID              string     `db:"id"`
	OfferID         string     `db:"offer_id"`
	CandidateID     string     `db:"candidate_id"`
	Status          string     `db:"status"`
	Management      bool       `db:"management"`
	StatusChangedAt *time.Time `db:"status_changed_at"`
	SubmittedAt     time.Time  `db:"submitted_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type documentModel struct {
	ID            string    `db:"id"`
	ApplicationID string    `db:"application_id"`
	DocumentType  string    `db:"document_type"`
	FileName      string    `db:"file_name"`
	Content       []byte    `db:"content"`
	MimeType      string    `db:"mime_type"`
	SizeBytes     int64     `db:"size_bytes"`
	UploadedAt    time.Time `db:"uploaded_at"`
}

type answerModel struct {
	ApplicationID string `db:"application_id"`
	Dimension     string `db:"dimension"`
	Position      int    `db:"position"`
	Answer        string `db:"answer"`
}

type contactModel struct {
	ApplicationID string `db:"application_id"`
	Position      int    `db:"position"`
	Company       string `db:"company"`
	FullName      string `db:"full_name"`
	Email         string `db:"email"`
	Phone         string `db:"phone"`
}

// toEntity converts database model to domain entity
func (m *applicationModel) toEntity() *application.Application {
	return &application.Application{
		ID:              kernel.ApplicationID(m.ID),
		OfferID:         kernel.OfferID(m.OfferID),
		CandidateID:     kernel.UserID(m.CandidateID),
		Status:          application.ApplicationStatus(m.Status),
		Management:      m.Management,
		StatusChangedAt: m.StatusChangedAt,
		SubmittedAt:     m.SubmittedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(app *application.Application) *applicationModel {
	return &applicationModel{
		ID:              string(app.ID),
		OfferID:         string(app.OfferID),
		CandidateID:     string(app.CandidateID),
		Status:          string(app.Status),
		Management:      app.Management,
		StatusChangedAt: app.StatusChangedAt,
		SubmittedAt:     app.SubmittedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

func (m *documentModel) toEntity() *application.Document {
	return &application.Document{
		ID:            kernel.DocumentID(m.ID),
		ApplicationID: kernel.ApplicationID(m.ApplicationID),
		Type:          application.DocumentType(m.DocumentType),
		FileName:      m.FileName,
		Content:       m.Content,
		MimeType:      m.MimeType,
		SizeBytes:     m.SizeBytes,
		UploadedAt:    m.UploadedAt,
	}
}

func fromDocumentEntity(doc *application.Document) *documentModel {
	return &documentModel{
		ID:            string(doc.ID),
		ApplicationID: string(doc.ApplicationID),
		DocumentType:  string(doc.Type),
		FileName:      doc.FileName,
		Content:       doc.Content,
		MimeType:      doc.MimeType,
		SizeBytes:     doc.SizeBytes,
		UploadedAt:    doc.UploadedAt,
	}
}

// answerRows flattens the per-dimension answer lists into positional rows.
func answerRows(app *application.Application) []answerModel {
	rows := []answerModel{}
	for _, d := range []offer.Dimension{
		offer.DimensionMetier,
		offer.DimensionTalent,
		offer.DimensionParadigme,
	} {
		for i, answer := range app.Answers.For(d) {
			rows = append(rows, answerModel{
				ApplicationID: string(app.ID),
				Dimension:     string(d),
				Position:      i,
				Answer:        answer,
			})
		}
	}
	return rows
}

func contactRows(app *application.Application) []contactModel {
	rows := make([]contactModel, 0, len(app.Contacts))
	for i, contact := range app.Contacts {
		rows = append(rows, contactModel{
			ApplicationID: string(app.ID),
			Position:      i,
			Company:       contact.Company,
			FullName:      contact.FullName,
			Email:         contact.Email,
			Phone:         contact.Phone,
		})
	}
	return rows
}

// mapSubmitConflict translates the partial unique index on live
// (candidate, offer) pairs into the typed duplicate conflict.
func mapSubmitConflict(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}

	if pqErr.Constraint == "applications_candidate_offer_live_key" {
		return application.ErrDuplicateApplication()
	}
	return application.ErrDuplicateApplication().WithDetail("constraint", pqErr.Constraint)
}

// ============================================================================
// Repository Implementation
// ============================================================================

const selectApplicationColumns = `
	id, offer_id, candidate_id, status, management,
	status_changed_at, submitted_at, updated_at
`

const insertApplicationQuery = `
	INSERT INTO applications (
		id, offer_id, candidate_id, status, management,
		status_changed_at, submitted_at, updated_at
	) VALUES (
		:id, :offer_id, :candidate_id, :status, :management,
		:status_changed_at, :submitted_at, :updated_at
	)
`

const insertDocumentQuery = `
	INSERT INTO application_documents (
		id, application_id, document_type, file_name, content,
		mime_type, size_bytes, uploaded_at
	) VALUES (
		:id, :application_id, :document_type, :file_name, :content,
		:mime_type, :size_bytes, :uploaded_at
	)
`

const insertAnswerQuery = `
	INSERT INTO mtp_answers (application_id, dimension, position, answer)
	VALUES (:application_id, :dimension, :position, :answer)
`

const insertContactQuery = `
	INSERT INTO reference_contacts (application_id, position, company, full_name, email, phone)
	VALUES (:application_id, :position, :company, :full_name, :email, :phone)
`

// Submit persists the full aggregate in one transaction. Either every row
// lands or none does; a concurrent duplicate loses on the partial unique
// index and surfaces as a typed conflict.
func (r *PostgresApplicationRepository) Submit(ctx context.Context, app *application.Application) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin submit transaction: %w", err)
	}
	defer tx.Rollback()

	model := fromEntity(app)
	if _, err := tx.NamedExecContext(ctx, insertApplicationQuery, model); err != nil {
		if conflict := mapSubmitConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to insert application: %w", err)
	}

	for i := range app.Documents {
		docModel := fromDocumentEntity(&app.Documents[i])
		if _, err := tx.NamedExecContext(ctx, insertDocumentQuery, docModel); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", app.Documents[i].Type, err)
		}
	}

	for _, row := range answerRows(app) {
		if _, err := tx.NamedExecContext(ctx, insertAnswerQuery, row); err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	for _, row := range contactRows(app) {
		if _, err := tx.NamedExecContext(ctx, insertContactQuery, row); err != nil {
			return fmt.Errorf("failed to insert reference contact: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves an application hydrated with answers, contacts and
// document metadata.
func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, selectApplicationColumns)

	var model applicationModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, application.ErrApplicationNotFound()
		}
		return nil, fmt.Errorf("failed to get application by id: %w", err)
	}

	app := model.toEntity()
	if err := r.hydrate(ctx, []*application.Application{app}); err != nil {
		return nil, err
	}

	return app, nil
}

// List retrieves applications matching the request filters with pagination.
func (r *PostgresApplicationRepository) List(ctx context.Context, req application.ListApplicationsRequest) (*kernel.Paginated[application.Application], error) {
	whereConditions := []string{}
	args := []interface{}{}
	argCount := 1

	if !req.CandidateID.IsEmpty() {
		whereConditions = append(whereConditions, fmt.Sprintf("candidate_id = $%d", argCount))
		args = append(args, string(req.CandidateID))
		argCount++
	}

	if !req.OfferID.IsEmpty() {
		whereConditions = append(whereConditions, fmt.Sprintf("offer_id = $%d", argCount))
		args = append(args, string(req.OfferID))
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

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM applications %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM applications
		%s
		ORDER BY submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, selectApplicationColumns, whereClause, argCount, argCount+1)

	args = append(args, req.Pagination.PageSize, req.Pagination.Offset())

	var models []applicationModel
	if err := r.db.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	items := make([]application.Application, 0, len(models))
	refs := make([]*application.Application, 0, len(models))
	for i := range models {
		items = append(items, *models[i].toEntity())
	}
	for i := range items {
		refs = append(refs, &items[i])
	}

	if err := r.hydrate(ctx, refs); err != nil {
		return nil, err
	}

	page := kernel.NewPage(req.Pagination, total)
	return &kernel.Paginated[application.Application]{
		Items: items,
		Page:  page,
		Empty: len(items) == 0,
	}, nil
}

// Update persists mutated status fields.
func (r *PostgresApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	query := `
		UPDATE applications SET
			status = :status,
			status_changed_at = :status_changed_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, fromEntity(app))
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return application.ErrApplicationNotFound()
	}

	return nil
}

// HasActiveForOffer reports whether a non-withdrawn application exists for
// the (candidate, offer) pair.
func (r *PostgresApplicationRepository) HasActiveForOffer(ctx context.Context, candidateID kernel.UserID, offerID kernel.OfferID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE candidate_id = $1 AND offer_id = $2 AND status <> $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, string(candidateID), string(offerID), string(application.StatusWithdrawn))
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate application: %w", err)
	}

	return exists, nil
}

// GetDocument retrieves one attachment including its content.
func (r *PostgresApplicationRepository) GetDocument(ctx context.Context, id kernel.DocumentID) (*application.Document, error) {
	query := `
		SELECT id, application_id, document_type, file_name, content,
		       mime_type, size_bytes, uploaded_at
		FROM application_documents
		WHERE id = $1
	`

	var model documentModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, application.ErrDocumentNotFound()
		}
		return nil, fmt.Errorf("failed to get document by id: %w", err)
	}

	return model.toEntity(), nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// hydrate bulk-loads answers, contacts and document metadata for a page of
// applications with three queries instead of three per row.
func (r *PostgresApplicationRepository) hydrate(ctx context.Context, apps []*application.Application) error {
	if len(apps) == 0 {
		return nil
	}

	byID := make(map[string]*application.Application, len(apps))
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		byID[string(app.ID)] = app
		ids = append(ids, string(app.ID))
	}

	answersQuery := `
		SELECT application_id, dimension, position, answer
		FROM mtp_answers
		WHERE application_id = ANY($1)
		ORDER BY application_id, dimension, position
	`
	var answers []answerModel
	if err := r.db.SelectContext(ctx, &answers, answersQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	for _, row := range answers {
		app, ok := byID[row.ApplicationID]
		if !ok {
			continue
		}
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
		SELECT application_id, position, company, full_name, email, phone
		FROM reference_contacts
		WHERE application_id = ANY($1)
		ORDER BY application_id, position
	`
	var contacts []contactModel
	if err := r.db.SelectContext(ctx, &contacts, contactsQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load reference contacts: %w", err)
	}
	for _, row := range contacts {
		app, ok := byID[row.ApplicationID]
		if !ok {
			continue
		}
		app.Contacts = append(app.Contacts, application.ReferenceContact{
			Company:  row.Company,
			FullName: row.FullName,
			Email:    row.Email,
			Phone:    row.Phone,
		})
	}

	// Metadata only; content stays in the database until a download or a
	// lake projection asks for it.
	documentsQuery := `
		SELECT id, application_id, document_type, file_name, mime_type,
		       size_bytes, uploaded_at
		FROM application_documents
		WHERE application_id = ANY($1)
		ORDER BY application_id, uploaded_at, id
	`
	var documents []documentModel
	if err := r.db.SelectContext(ctx, &documents, documentsQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	for i := range documents {
		app, ok := byID[documents[i].ApplicationID]
		if !ok {
			continue
		}
		app.Documents = append(app.Documents, *documents[i].toEntity())
	}

	return nil
}
