package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// TokenService mints and validates HMAC-signed access tokens. The signing
// secret is read once at startup and never rotated at runtime.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
}

func NewTokenService(secret string, ttl time.Duration, issuer, audience string) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   issuer,
		audience: audience,
	}
}

// AccessTTL exposes the configured token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.ttl
}

type accessClaims struct {
	Role            string `json:"role"`
	CandidateStatus string `json:"candidate_status,omitempty"`
	Status          string `json:"status"`
	jwt.RegisteredClaims
}

// Mint issues an access token for the principal. The returned time is the
// token expiry.
func (s *TokenService) Mint(p Principal) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := accessClaims{
		Role:            string(p.Role),
		CandidateStatus: string(p.CandidateStatus),
		Status:          string(p.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errx.Wrap(err, "failed to sign access token", errx.TypeInternal)
	}
	return token, expiresAt, nil
}

// Parse validates the token signature, expiry, issuer and audience, and
// rebuilds the principal from its claims.
func (s *TokenService) Parse(raw string) (*Principal, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired()
		}
		return nil, ErrTokenInvalid().WithDetail("reason", err.Error())
	}

	principal := &Principal{
		UserID:          kernel.NewUserID(claims.Subject),
		Role:            Role(claims.Role),
		CandidateStatus: CandidateStatus(claims.CandidateStatus),
		Status:          UserStatus(claims.Status),
	}
	if principal.UserID.IsEmpty() || !principal.Role.IsValid() {
		return nil, ErrTokenInvalid().WithDetail("reason", "missing subject or role")
	}
	return principal, nil
}

// GenerateOpaqueToken returns a 256-bit random bearer value for refresh
// tokens. Only its hash is stored server-side.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errx.Wrap(err, "failed to generate token", errx.TypeInternal)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken derives the storage form of an opaque token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
