package application

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

// ApplicationStatus represents the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusInterview   ApplicationStatus = "interview"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusInterview,
		StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

// reviewTransitions is the recruiter-driven state machine. Withdrawal is
// candidate-driven and goes through Withdraw instead.
var reviewTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:   {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusInterview, StatusRejected},
	StatusInterview:   {StatusAccepted, StatusRejected},
}

// flexibleStrings accepts either a JSON string list or a single legacy flat
// string, which older frontends sent for one-answer dimensions. The legacy
// form is promoted to a one-element list at parse time and never survives
// past the boundary.
type flexibleStrings []string

func (f *flexibleStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if strings.TrimSpace(single) == "" {
		*f = []string{}
		return nil
	}
	*f = []string{single}
	return nil
}

// MTPAnswers is the candidate's answer bundle. Answers are positional: the
// i-th answer of a dimension responds to the i-th question of the offer's
// bundle for that dimension.
type MTPAnswers struct {
	Metier    flexibleStrings `json:"metier"`
	Talent    flexibleStrings `json:"talent"`
	Paradigme flexibleStrings `json:"paradigme"`
}

// CountFor returns the number of answers for one dimension.
func (a *MTPAnswers) CountFor(d offer.Dimension) int {
	switch d {
	case offer.DimensionMetier:
		return len(a.Metier)
	case offer.DimensionTalent:
		return len(a.Talent)
	case offer.DimensionParadigme:
		return len(a.Paradigme)
	}
	return 0
}

// For returns the ordered answers of one dimension.
func (a *MTPAnswers) For(d offer.Dimension) []string {
	switch d {
	case offer.DimensionMetier:
		return a.Metier
	case offer.DimensionTalent:
		return a.Talent
	case offer.DimensionParadigme:
		return a.Paradigme
	}
	return nil
}

// ValidateAgainst rejects bundles whose per-dimension answer count exceeds
// the offer's question count. Fewer answers than questions is allowed;
// unanswered questions simply stay blank.
func (a *MTPAnswers) ValidateAgainst(questions *offer.MTPQuestions) error {
	for _, d := range []offer.Dimension{
		offer.DimensionMetier,
		offer.DimensionTalent,
		offer.DimensionParadigme,
	} {
		if a.CountFor(d) > questions.CountFor(d) {
			return ErrAnswerShapeMismatch().
				WithDetail("dimension", string(d)).
				WithDetail("answers", a.CountFor(d)).
				WithDetail("questions", questions.CountFor(d))
		}
	}
	return nil
}

// MaxReferenceContacts caps the contact list of one application.
const MaxReferenceContacts = 5

// ReferenceContact is a professional reference supplied by the candidate.
type ReferenceContact struct {
	Company  string `json:"company"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ValidateContacts enforces the contact cap and per-contact invariants.
func ValidateContacts(contacts []ReferenceContact) error {
	if len(contacts) > MaxReferenceContacts {
		return ErrInvalidApplicationData().
			WithDetail("field", "reference_contacts").
			WithDetail("max", MaxReferenceContacts).
			WithDetail("got", len(contacts))
	}
	for i, contact := range contacts {
		if strings.TrimSpace(contact.FullName) == "" {
			return ErrInvalidApplicationData().
				WithDetail("field", "reference_contacts").
				WithDetail("position", i).
				WithDetail("reason", "blank full_name")
		}
		if contact.Email != "" && !kernel.NewEmail(contact.Email).IsValid() {
			return ErrInvalidApplicationData().
				WithDetail("field", "reference_contacts").
				WithDetail("position", i).
				WithDetail("reason", "invalid email")
		}
	}
	return nil
}

// Application is a candidate's submission against one offer. The aggregate
// owns its answers, reference contacts and attached documents; all of them
// are written in the same transaction as the application row.
type Application struct {
	ID              kernel.ApplicationID `db:"id" json:"id"`
	OfferID         kernel.OfferID       `db:"offer_id" json:"offer_id"`
	CandidateID     kernel.UserID        `db:"candidate_id" json:"candidate_id"`
	Status          ApplicationStatus    `db:"status" json:"status"`
	Answers         MTPAnswers           `json:"answers"`
	Management      bool                 `db:"management" json:"management"`
	Contacts        []ReferenceContact   `json:"reference_contacts,omitempty"`
	Documents       []Document           `json:"documents,omitempty"`
	StatusChangedAt *time.Time           `db:"status_changed_at" json:"status_changed_at,omitempty"`
	SubmittedAt     time.Time            `db:"submitted_at" json:"submitted_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsOwnedBy reports whether the given user submitted this application.
func (a *Application) IsOwnedBy(userID kernel.UserID) bool {
	return a.CandidateID == userID
}

func (a *Application) IsWithdrawn() bool {
	return a.Status == StatusWithdrawn
}

// CanTransitionTo checks the recruiter-driven transition matrix.
func (a *Application) CanTransitionTo(newStatus ApplicationStatus) bool {
	allowed, ok := reviewTransitions[a.Status]
	if !ok {
		return false
	}
	return slices.Contains(allowed, newStatus)
}

// UpdateStatus applies a recruiter-driven transition. Withdrawal is not
// reachable here; candidates withdraw through Withdraw.
func (a *Application) UpdateStatus(newStatus ApplicationStatus) error {
	if !newStatus.IsValid() || newStatus == StatusWithdrawn || !a.CanTransitionTo(newStatus) {
		return ErrInvalidStatusTransition().
			WithDetail("current_status", string(a.Status)).
			WithDetail("new_status", string(newStatus))
	}

	now := time.Now()
	a.Status = newStatus
	a.StatusChangedAt = &now
	a.UpdatedAt = now
	return nil
}

// Withdraw marks the application as withdrawn by its candidate. Decided
// applications cannot be withdrawn.
func (a *Application) Withdraw() error {
	if a.Status.IsTerminal() {
		return ErrCannotWithdraw().WithDetail("status", string(a.Status))
	}

	now := time.Now()
	a.Status = StatusWithdrawn
	a.StatusChangedAt = &now
	a.UpdatedAt = now
	return nil
}
