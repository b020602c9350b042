package user

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// RefreshToken is the stored form of a long-lived bearer. Only the SHA-256
// hash of the opaque value is persisted; tokens are single-use and rotated
// on every refresh.
type RefreshToken struct {
	TokenHash string        `db:"token_hash" json:"-"`
	UserID    kernel.UserID `db:"user_id" json:"user_id"`
	ExpiresAt time.Time     `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time    `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Usable reports whether the token can still be redeemed.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}
