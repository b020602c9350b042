package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService(testSecret, ttl, "funnel", "funnel-web")
}

func TestTokenService_MintAndParse(t *testing.T) {
	svc := newTestTokenService(time.Minute)

	t.Run("roundtrips a staff principal", func(t *testing.T) {
		principal := Principal{
			UserID: kernel.NewUserID("user-1"),
			Role:   RoleRecruiter,
			Status: StatusActive,
		}

		token, expiresAt, err := svc.Mint(principal)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

		parsed, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, principal.UserID, parsed.UserID)
		assert.Equal(t, RoleRecruiter, parsed.Role)
		assert.Equal(t, StatusActive, parsed.Status)
		assert.Empty(t, parsed.CandidateStatus)
	})

	t.Run("roundtrips candidate claims", func(t *testing.T) {
		principal := Principal{
			UserID:          kernel.NewUserID("user-2"),
			Role:            RoleCandidate,
			CandidateStatus: CandidateInternal,
			Status:          StatusPending,
		}

		token, _, err := svc.Mint(principal)
		require.NoError(t, err)

		parsed, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, CandidateInternal, parsed.CandidateStatus)
		assert.Equal(t, StatusPending, parsed.Status)
	})
}

func TestTokenService_Parse_Rejections(t *testing.T) {
	svc := newTestTokenService(time.Minute)
	principal := Principal{
		UserID: kernel.NewUserID("user-1"),
		Role:   RoleAdmin,
		Status: StatusActive,
	}

	t.Run("expired tokens report expiry, not a generic failure", func(t *testing.T) {
		expired := newTestTokenService(-time.Minute)
		token, _, err := expired.Mint(principal)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.True(t, errx.IsCode(err, CodeTokenExpired))
	})

	t.Run("a different signing secret is rejected", func(t *testing.T) {
		other := NewTokenService("another-secret-another-secret-another-secret!!", time.Minute, "funnel", "funnel-web")
		token, _, err := other.Mint(principal)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.True(t, errx.IsCode(err, CodeTokenInvalid))
	})

	t.Run("a foreign issuer is rejected", func(t *testing.T) {
		other := NewTokenService(testSecret, time.Minute, "someone-else", "funnel-web")
		token, _, err := other.Mint(principal)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.True(t, errx.IsCode(err, CodeTokenInvalid))
	})

	t.Run("a foreign audience is rejected", func(t *testing.T) {
		other := NewTokenService(testSecret, time.Minute, "funnel", "funnel-mobile")
		token, _, err := other.Mint(principal)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.True(t, errx.IsCode(err, CodeTokenInvalid))
	})

	t.Run("a token without subject is rejected", func(t *testing.T) {
		token, _, err := svc.Mint(Principal{Role: RoleAdmin, Status: StatusActive})
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.True(t, errx.IsCode(err, CodeTokenInvalid))
	})

	t.Run("a token with an unknown role is rejected", func(t *testing.T) {
		token, _, err := svc.Mint(Principal{
			UserID: kernel.NewUserID("user-1"),
			Role:   Role("superuser"),
			Status: StatusActive,
		})
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.True(t, errx.IsCode(err, CodeTokenInvalid))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.Parse("not.a.token")
		assert.True(t, errx.IsCode(err, CodeTokenInvalid))
	})
}

func TestGenerateOpaqueToken(t *testing.T) {
	first, err := GenerateOpaqueToken()
	require.NoError(t, err)
	second, err := GenerateOpaqueToken()
	require.NoError(t, err)

	// 32 random bytes in unpadded base64url.
	assert.Len(t, first, 43)
	assert.NotEqual(t, first, second)
}

func TestHashToken(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, HashToken("some-token"), HashToken("some-token"))
	})

	t.Run("differs per input and never echoes it", func(t *testing.T) {
		hash := HashToken("some-token")

		assert.NotEqual(t, hash, HashToken("other-token"))
		assert.Len(t, hash, 64)
		assert.NotContains(t, hash, "some-token")
	})
}
