// Package auth holds the identity core: roles, principals, access tokens,
// password hashing and the HTTP guards built on them.
package auth

import "github.com/meridian-hr/funnel/pkg/kernel"

// Role is the coarse permission level of a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleObserver  Role = "observer"
	RoleCandidate Role = "candidate"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRecruiter, RoleObserver, RoleCandidate:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusPending UserStatus = "pending"
	StatusBlocked UserStatus = "blocked"
)

// CandidateStatus distinguishes internal employees from external applicants.
// Only users with RoleCandidate carry one.
type CandidateStatus string

const (
	CandidateInternal CandidateStatus = "internal"
	CandidateExternal CandidateStatus = "external"
)

// Password policy. Logins accept legacy 8-character passwords; anything that
// sets a new password requires the full minimum.
const (
	MinPasswordLength       = 12
	MinLegacyPasswordLength = 8
)

// Principal is the authenticated caller materialized from an access token.
type Principal struct {
	UserID          kernel.UserID
	Role            Role
	CandidateStatus CandidateStatus
	Status          UserStatus
}

// HasRole reports whether the principal holds any of the given roles.
func (p *Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the principal may act on other users' data.
func (p *Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleRecruiter
}

// IsActiveCandidate reports whether the principal may submit applications.
func (p *Principal) IsActiveCandidate() bool {
	return p.Role == RoleCandidate && p.Status == StatusActive
}
