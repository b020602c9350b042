package lake

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

// Lake layout. Keys are deterministic: the partition date comes from the
// application's submission timestamp, never from the wall clock, so a replay
// lands on exactly the same objects and overwrites them.
const (
	dimCandidatesPrefix    = "dimensions/dim_candidates"
	dimOffersPrefix        = "dimensions/dim_job_offers"
	factApplicationsPrefix = "facts/fact_applications"
	documentsPrefix        = "documents"
)

// PartitionDate renders the ingestion partition segment for a submission
// timestamp. Dates are UTC so the partition is independent of server zone.
func PartitionDate(submittedAt time.Time) string {
	return "ingestion_date=" + submittedAt.UTC().Format("2006-01-02")
}

func CandidateDimensionKey(submittedAt time.Time, candidateID kernel.UserID) string {
	return dimCandidatesPrefix + "/" + PartitionDate(submittedAt) + "/" + candidateID.String() + ".json"
}

func OfferDimensionKey(submittedAt time.Time, offerID kernel.OfferID) string {
	return dimOffersPrefix + "/" + PartitionDate(submittedAt) + "/" + offerID.String() + ".json"
}

func ApplicationFactKey(submittedAt time.Time, applicationID kernel.ApplicationID) string {
	return factApplicationsPrefix + "/" + PartitionDate(submittedAt) + "/" + applicationID.String() + ".json"
}

// DocumentKey places one attachment blob under the application's partition.
func DocumentKey(submittedAt time.Time, applicationID kernel.ApplicationID, docType application.DocumentType, fileName string) string {
	return documentsPrefix + "/" + PartitionDate(submittedAt) + "/" + applicationID.String() +
		"/" + string(docType) + "_" + SanitizeFileName(fileName)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFileName normalizes a client-supplied file name into a stable key
// segment: path components are stripped, whitespace runs collapse to a
// single underscore and the extension is lowercased. The same input always
// yields the same segment, which keeps retried uploads idempotent.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext) + strings.ToLower(ext)
	}
	return name
}

// CandidateDimension is the denormalized user + profile snapshot written to
// dim_candidates. Timestamps are copied from the stored rows.
type CandidateDimension struct {
	CandidateID     string     `json:"candidate_id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Phone           string     `json:"phone,omitempty"`
	Sexe            string     `json:"sexe,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Matricule       *int       `json:"matricule,omitempty"`
	CandidateStatus string     `json:"candidate_status,omitempty"`

	Skills            []string `json:"skills,omitempty"`
	YearsExperience   *int     `json:"years_experience,omitempty"`
	ExpectedSalaryMin *int     `json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax *int     `json:"expected_salary_max,omitempty"`
	SalaryCurrency    string   `json:"salary_currency,omitempty"`
	Education         string   `json:"education,omitempty"`
	Availability      string   `json:"availability,omitempty"`
	PortfolioURL      string   `json:"portfolio_url,omitempty"`
	LinkedinURL       string   `json:"linkedin_url,omitempty"`

	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OfferDimension is the offer snapshot written to dim_job_offers, including
// the frozen MTP question bundle answers index into.
type OfferDimension struct {
	OfferID        string             `json:"offer_id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Location       string             `json:"location,omitempty"`
	Department     string             `json:"department,omitempty"`
	ContractType   string             `json:"contract_type"`
	SalaryMin      *int               `json:"salary_min,omitempty"`
	SalaryMax      *int               `json:"salary_max,omitempty"`
	SalaryCurrency string             `json:"salary_currency,omitempty"`
	Visibility     string             `json:"visibility"`
	Status         string             `json:"status"`
	MTPQuestions   offer.MTPQuestions `json:"mtp_questions"`
	CreatedBy      string             `json:"created_by"`
	PublishedAt    *time.Time         `json:"published_at,omitempty"`
	ClosedAt       *time.Time         `json:"closed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// FactDocument references one extracted attachment blob from the fact row.
type FactDocument struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
	SizeBytes    int64  `json:"size_bytes"`
	BlobKey      string `json:"blob_key"`
}

// ApplicationFact is the fact_applications row: foreign keys into both
// dimensions plus the submission payload and its counts.
type ApplicationFact struct {
	ApplicationID     string                         `json:"application_id"`
	CandidateID       string                         `json:"candidate_id"`
	OfferID           string                         `json:"offer_id"`
	Status            string                         `json:"status"`
	Management        bool                           `json:"management"`
	MTPAnswers        application.MTPAnswers         `json:"mtp_answers"`
	AnswerCount       int                            `json:"answer_count"`
	DocumentCount     int                            `json:"document_count"`
	Documents         []FactDocument                 `json:"documents"`
	ReferenceContacts []application.ReferenceContact `json:"reference_contacts"`
	StatusChangedAt   *time.Time                     `json:"status_changed_at,omitempty"`
	SubmittedAt       time.Time                      `json:"submitted_at"`
	UpdatedAt         time.Time                      `json:"updated_at"`
}

// BuildCandidateDimension flattens the candidate account and optional
// profile into one document.
func BuildCandidateDimension(b *Bundle) *CandidateDimension {
	c := b.Candidate
	dim := &CandidateDimension{
		CandidateID:     c.ID.String(),
		Email:           c.Email.String(),
		FirstName:       c.FirstName.String(),
		LastName:        c.LastName.String(),
		Phone:           c.Phone.String(),
		Sexe:            string(c.Sexe),
		DateOfBirth:     c.DateOfBirth,
		Matricule:       c.Matricule,
		CandidateStatus: string(c.CandidateStatus),
		RegisteredAt:    c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}

	if p := b.Profile; p != nil {
		years := p.YearsExperience
		dim.Skills = p.Skills
		dim.YearsExperience = &years
		dim.ExpectedSalaryMin = p.ExpectedSalaryMin
		dim.ExpectedSalaryMax = p.ExpectedSalaryMax
		dim.SalaryCurrency = p.SalaryCurrency
		dim.Education = p.Education
		dim.Availability = p.Availability
		dim.PortfolioURL = p.PortfolioURL
		dim.LinkedinURL = p.LinkedinURL
		if p.UpdatedAt.After(dim.UpdatedAt) {
			dim.UpdatedAt = p.UpdatedAt
		}
	}

	return dim
}

// BuildOfferDimension snapshots the offer as it stands at projection time.
func BuildOfferDimension(b *Bundle) *OfferDimension {
	o := b.Offer
	return &OfferDimension{
		OfferID:        o.ID.String(),
		Title:          o.Title,
		Description:    o.Description,
		Location:       o.Location,
		Department:     o.Department,
		ContractType:   string(o.ContractType),
		SalaryMin:      o.SalaryMin,
		SalaryMax:      o.SalaryMax,
		SalaryCurrency: o.SalaryCurrency,
		Visibility:     string(o.Visibility),
		Status:         string(o.Status),
		MTPQuestions:   o.Questions,
		CreatedBy:      o.CreatedBy.String(),
		PublishedAt:    o.PublishedAt,
		ClosedAt:       o.ClosedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// BuildApplicationFact assembles the fact document. Blob keys are computed
// here so the fact references exactly the objects the projector writes.
func BuildApplicationFact(b *Bundle) *ApplicationFact {
	app := b.Application

	docs := make([]FactDocument, 0, len(app.Documents))
	for i := range app.Documents {
		d := &app.Documents[i]
		docs = append(docs, FactDocument{
			DocumentID:   d.ID.String(),
			DocumentType: string(d.Type),
			FileName:     d.FileName,
			SizeBytes:    d.SizeBytes,
			BlobKey:      DocumentKey(app.SubmittedAt, app.ID, d.Type, d.FileName),
		})
	}

	contacts := app.Contacts
	if contacts == nil {
		contacts = []application.ReferenceContact{}
	}

	answerCount := 0
	for _, d := range []offer.Dimension{offer.DimensionMetier, offer.DimensionTalent, offer.DimensionParadigme} {
		answerCount += app.Answers.CountFor(d)
	}

	return &ApplicationFact{
		ApplicationID:     app.ID.String(),
		CandidateID:       app.CandidateID.String(),
		OfferID:           app.OfferID.String(),
		Status:            string(app.Status),
		Management:        app.Management,
		MTPAnswers:        app.Answers,
		AnswerCount:       answerCount,
		DocumentCount:     len(app.Documents),
		Documents:         docs,
		ReferenceContacts: contacts,
		StatusChangedAt:   app.StatusChangedAt,
		SubmittedAt:       app.SubmittedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}
