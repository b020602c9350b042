package user

import (
	"context"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Repository defines persistence for accounts.
type Repository interface {
	// Create persists one account. Email and matricule collisions surface
	// as typed conflicts.
	Create(ctx context.Context, u *User) error

	// CreateCandidate persists a candidate signup atomically: the account,
	// its profile, and the access request when the account starts pending.
	// profile and request may be nil.
	CreateCandidate(ctx context.Context, u *User, profile *CandidateProfile, request *AccessRequest) error

	// Update persists mutated account fields.
	Update(ctx context.Context, u *User) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id kernel.UserID) (*User, error)

	// GetByEmail retrieves an account by normalized email.
	GetByEmail(ctx context.Context, email kernel.Email) (*User, error)

	// List returns accounts filtered by role and status.
	List(ctx context.Context, req ListUsersRequest) (*kernel.Paginated[User], error)
}

// ProfileRepository defines persistence for candidate profiles.
type ProfileRepository interface {
	// Upsert inserts or replaces the profile of a candidate.
	Upsert(ctx context.Context, p *CandidateProfile) error

	// GetByUserID retrieves the profile of a candidate.
	GetByUserID(ctx context.Context, userID kernel.UserID) (*CandidateProfile, error)
}

// AccessRequestRepository defines persistence for signup access requests.
type AccessRequestRepository interface {
	Update(ctx context.Context, r *AccessRequest) error
	GetByID(ctx context.Context, id kernel.AccessRequestID) (*AccessRequest, error)
	// GetPendingByUserID finds the open request of a user, if any.
	GetPendingByUserID(ctx context.Context, userID kernel.UserID) (*AccessRequest, error)
	// ListPending returns open requests with the requesting account joined in.
	ListPending(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[AccessRequestResponse], error)
}

// RefreshTokenRepository defines persistence for refresh tokens. Lookups use
// the token hash, never the raw value.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*RefreshToken, error)
	Revoke(ctx context.Context, hash string) error
	// RevokeAllForUser invalidates every live token of a user, used on
	// password changes and account blocks.
	RevokeAllForUser(ctx context.Context, userID kernel.UserID) error
}
