package user

import (
	"fmt"
	"time"

	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Sexe as declared on the civil record.
type Sexe string

const (
	SexeMale   Sexe = "M"
	SexeFemale Sexe = "F"
)

func (s Sexe) IsValid() bool {
	return s == SexeMale || s == SexeFemale
}

type User struct {
	ID               kernel.UserID        `db:"id" json:"id"`
	Email            kernel.Email         `db:"email" json:"email"`
	PasswordHash     string               `db:"password_hash" json:"-"`
	Role             auth.Role            `db:"role" json:"role"`
	Status           auth.UserStatus      `db:"status" json:"status"`
	FirstName        kernel.FirstName     `db:"first_name" json:"first_name"`
	LastName         kernel.LastName      `db:"last_name" json:"last_name"`
	Phone            kernel.Phone         `db:"phone" json:"phone"`
	Sexe             Sexe                 `db:"sexe" json:"sexe"`
	DateOfBirth      *time.Time           `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Matricule        *int                 `db:"matricule" json:"matricule,omitempty"`
	CandidateStatus  auth.CandidateStatus `db:"candidate_status" json:"candidate_status,omitempty"`
	NoCorporateEmail bool                 `db:"no_corporate_email" json:"no_corporate_email"`
	CreatedAt        time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// GetFullName returns the user's display name.
func (u *User) GetFullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) IsCandidate() bool {
	return u.Role == auth.RoleCandidate
}

func (u *User) IsActive() bool {
	return u.Status == auth.StatusActive
}

func (u *User) IsPending() bool {
	return u.Status == auth.StatusPending
}

func (u *User) IsBlocked() bool {
	return u.Status == auth.StatusBlocked
}

// RequiresActivation reports whether this candidate must wait for a
// recruiter to approve the account: internal employees without a corporate
// email address start pending.
func (u *User) RequiresActivation() bool {
	return u.IsCandidate() &&
		u.CandidateStatus == auth.CandidateInternal &&
		u.NoCorporateEmail
}

// CanAuthenticate returns the typed refusal for non-active accounts.
func (u *User) CanAuthenticate() error {
	switch u.Status {
	case auth.StatusActive:
		return nil
	case auth.StatusPending:
		return auth.ErrAccountPending()
	default:
		return auth.ErrAccountBlocked()
	}
}

// CanSubmitApplications reports whether the user may create applications.
func (u *User) CanSubmitApplications() bool {
	return u.IsCandidate() && u.IsActive()
}

// Activate moves a pending or blocked account to active.
func (u *User) Activate() error {
	if u.IsActive() {
		return ErrUserAlreadyActive()
	}
	u.Status = auth.StatusActive
	u.UpdatedAt = time.Now()
	return nil
}

// Block suspends the account. Blocked users cannot authenticate.
func (u *User) Block() error {
	if u.IsBlocked() {
		return ErrUserAlreadyBlocked()
	}
	u.Status = auth.StatusBlocked
	u.UpdatedAt = time.Now()
	return nil
}

// Unblock restores a blocked account to active.
func (u *User) Unblock() error {
	if !u.IsBlocked() {
		return ErrUserNotBlocked()
	}
	u.Status = auth.StatusActive
	u.UpdatedAt = time.Now()
	return nil
}

// Principal materializes the authorization view of this user.
func (u *User) Principal() auth.Principal {
	return auth.Principal{
		UserID:          u.ID,
		Role:            u.Role,
		CandidateStatus: u.CandidateStatus,
		Status:          u.Status,
	}
}

// Validate enforces the structural invariants of an account.
func (u *User) Validate() error {
	if !u.Email.IsValid() {
		return ErrInvalidUserData().WithDetail("field", "email")
	}
	if !u.Role.IsValid() {
		return ErrInvalidUserData().WithDetail("field", "role")
	}
	if !u.Sexe.IsValid() {
		return ErrInvalidUserData().WithDetail("field", "sexe")
	}
	if u.IsCandidate() && u.CandidateStatus == "" {
		return ErrMissingCandidateStatus()
	}
	if !u.IsCandidate() && u.CandidateStatus != "" {
		return ErrInvalidUserData().WithDetail("field", "candidate_status").
			WithDetail("reason", "only candidates carry a candidate status")
	}
	return nil
}
