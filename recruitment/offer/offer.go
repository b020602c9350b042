package offer

import (
	"strings"
	"time"

	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// ContractType is the employment contract attached to an offer.
type ContractType string

const (
	ContractCDI        ContractType = "CDI"
	ContractCDD        ContractType = "CDD"
	ContractStage      ContractType = "Stage"
	ContractAlternance ContractType = "Alternance"
	ContractFreelance  ContractType = "Freelance"
)

func (c ContractType) IsValid() bool {
	switch c {
	case ContractCDI, ContractCDD, ContractStage, ContractAlternance, ContractFreelance:
		return true
	}
	return false
}

// Visibility restricts which candidate population may see and apply to an
// offer.
type Visibility string

const (
	VisibilityAll      Visibility = "all"
	VisibilityInternal Visibility = "internal"
	VisibilityExternal Visibility = "external"
)

func (v Visibility) IsValid() bool {
	return v == VisibilityAll || v == VisibilityInternal || v == VisibilityExternal
}

// OfferStatus is the lifecycle state. Only open offers accept applications.
type OfferStatus string

const (
	StatusDraft  OfferStatus = "draft"
	StatusOpen   OfferStatus = "open"
	StatusClosed OfferStatus = "closed"
)

// Dimension names one axis of the MTP questionnaire.
type Dimension string

const (
	DimensionMetier    Dimension = "metier"
	DimensionTalent    Dimension = "talent"
	DimensionParadigme Dimension = "paradigme"
)

// Per-dimension question caps.
const (
	MaxMetierQuestions    = 7
	MaxTalentQuestions    = 3
	MaxParadigmeQuestions = 3
)

// MTPQuestions is the ordered question bundle of an offer. Answers reference
// questions by position, so the bundle is frozen once the offer opens.
type MTPQuestions struct {
	Metier    []string `json:"metier"`
	Talent    []string `json:"talent"`
	Paradigme []string `json:"paradigme"`
}

// Validate enforces the per-dimension caps and rejects blank questions.
func (q *MTPQuestions) Validate() error {
	dims := []struct {
		name      Dimension
		questions []string
		max       int
	}{
		{DimensionMetier, q.Metier, MaxMetierQuestions},
		{DimensionTalent, q.Talent, MaxTalentQuestions},
		{DimensionParadigme, q.Paradigme, MaxParadigmeQuestions},
	}

	for _, d := range dims {
		if len(d.questions) > d.max {
			return ErrInvalidOfferData().
				WithDetail("dimension", string(d.name)).
				WithDetail("max_questions", d.max).
				WithDetail("got", len(d.questions))
		}
		for i, question := range d.questions {
			if strings.TrimSpace(question) == "" {
				return ErrInvalidOfferData().
					WithDetail("dimension", string(d.name)).
					WithDetail("position", i).
					WithDetail("reason", "blank question")
			}
		}
	}

	return nil
}

// CountFor returns the number of questions in one dimension.
func (q *MTPQuestions) CountFor(d Dimension) int {
	switch d {
	case DimensionMetier:
		return len(q.Metier)
	case DimensionTalent:
		return len(q.Talent)
	case DimensionParadigme:
		return len(q.Paradigme)
	}
	return 0
}

// Equal reports whether two bundles carry the same questions in the same
// order.
func (q *MTPQuestions) Equal(other *MTPQuestions) bool {
	eq := func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	return eq(q.Metier, other.Metier) &&
		eq(q.Talent, other.Talent) &&
		eq(q.Paradigme, other.Paradigme)
}

// Offer is a published job position candidates apply to.
type Offer struct {
	ID             kernel.OfferID `db:"id" json:"id"`
	CreatedBy      kernel.UserID  `db:"created_by" json:"created_by"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description"`
	Location       string         `db:"location" json:"location"`
	Department     string         `db:"department" json:"department"`
	ContractType   ContractType   `db:"contract_type" json:"contract_type"`
	SalaryMin      *int           `db:"salary_min" json:"salary_min,omitempty"`
	SalaryMax      *int           `db:"salary_max" json:"salary_max,omitempty"`
	SalaryCurrency string         `db:"salary_currency" json:"salary_currency,omitempty"`
	Visibility     Visibility     `db:"visibility" json:"visibility"`
	Questions      MTPQuestions   `json:"questions"`
	Status         OfferStatus    `db:"status" json:"status"`
	PublishedAt    *time.Time     `db:"published_at" json:"published_at,omitempty"`
	ClosedAt       *time.Time     `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

func (o *Offer) IsDraft() bool {
	return o.Status == StatusDraft
}

func (o *Offer) IsOpen() bool {
	return o.Status == StatusOpen
}

func (o *Offer) IsClosed() bool {
	return o.Status == StatusClosed
}

// AcceptsApplications reports whether submissions are allowed right now.
func (o *Offer) AcceptsApplications() bool {
	return o.IsOpen()
}

// Publish moves a draft offer to open. The question bundle freezes here.
func (o *Offer) Publish() error {
	if !o.IsDraft() {
		return ErrInvalidTransition().
			WithDetail("from", string(o.Status)).
			WithDetail("to", string(StatusOpen))
	}
	now := time.Now()
	o.Status = StatusOpen
	o.PublishedAt = &now
	o.UpdatedAt = now
	return nil
}

// Close moves an open offer to closed. Closed offers reject new
// applications but stay readable for candidates who applied.
func (o *Offer) Close() error {
	if !o.IsOpen() {
		return ErrInvalidTransition().
			WithDetail("from", string(o.Status)).
			WithDetail("to", string(StatusClosed))
	}
	now := time.Now()
	o.Status = StatusClosed
	o.ClosedAt = &now
	o.UpdatedAt = now
	return nil
}

// VisibleTo reports whether a candidate population may see this offer.
// Staff roles bypass this check entirely.
func (o *Offer) VisibleTo(status auth.CandidateStatus) bool {
	switch o.Visibility {
	case VisibilityAll:
		return true
	case VisibilityInternal:
		return status == auth.CandidateInternal
	case VisibilityExternal:
		return status == auth.CandidateExternal
	}
	return false
}

// Validate enforces the structural invariants of an offer.
func (o *Offer) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return ErrInvalidOfferData().WithDetail("field", "title")
	}
	if !o.ContractType.IsValid() {
		return ErrInvalidOfferData().
			WithDetail("field", "contract_type").
			WithDetail("got", string(o.ContractType))
	}
	if !o.Visibility.IsValid() {
		return ErrInvalidOfferData().
			WithDetail("field", "visibility").
			WithDetail("got", string(o.Visibility))
	}
	if o.SalaryMin != nil && *o.SalaryMin < 0 {
		return ErrInvalidOfferData().WithDetail("field", "salary_min")
	}
	if o.SalaryMax != nil && *o.SalaryMax < 0 {
		return ErrInvalidOfferData().WithDetail("field", "salary_max")
	}
	if o.SalaryMin != nil && o.SalaryMax != nil && *o.SalaryMin > *o.SalaryMax {
		return ErrInvalidOfferData().
			WithDetail("field", "salary_min").
			WithDetail("reason", "minimum exceeds maximum")
	}
	return o.Questions.Validate()
}
