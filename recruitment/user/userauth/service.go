package userauth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/user"
	"github.com/meridian-hr/funnel/recruitment/user/usersrv"
)

// AuthService implements candidate signup and the token lifecycle: login,
// refresh rotation, password change and logout.
type AuthService struct {
	userRepo         user.Repository
	refreshTokenRepo user.RefreshTokenRepository
	tokenService     *auth.TokenService
	passwordService  auth.PasswordService
	refreshTTL       time.Duration
}

func NewAuthService(
	userRepo user.Repository,
	refreshTokenRepo user.RefreshTokenRepository,
	tokenService *auth.TokenService,
	passwordService auth.PasswordService,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokenService:     tokenService,
		passwordService:  passwordService,
		refreshTTL:       refreshTTL,
	}
}

// RegisterCandidate creates a candidate account with its profile. Internal
// candidates without a corporate email start pending behind an access
// request; everyone else starts active and receives tokens immediately.
func (s *AuthService) RegisterCandidate(ctx context.Context, req user.RegisterCandidateRequest) (*user.SignupCandidateResponse, error) {
	if len(req.Password) < auth.MinPasswordLength {
		return nil, auth.ErrWeakPassword().WithDetail("min_length", auth.MinPasswordLength)
	}

	hash, err := s.passwordService.Hash(req.Password)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	dateOfBirth, err := user.ParseBirthDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newUser := &user.User{
		ID:               kernel.NewUserID(uuid.NewString()),
		Email:            kernel.NewEmail(req.Email),
		PasswordHash:     hash,
		Role:             auth.RoleCandidate,
		Status:           auth.StatusActive,
		FirstName:        kernel.FirstName(req.FirstName),
		LastName:         kernel.LastName(req.LastName),
		Phone:            kernel.Phone(req.Phone),
		Sexe:             req.Sexe,
		DateOfBirth:      dateOfBirth,
		Matricule:        req.Matricule,
		CandidateStatus:  req.CandidateStatus,
		NoCorporateEmail: req.NoCorporateEmail,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if newUser.RequiresActivation() {
		newUser.Status = auth.StatusPending
	}

	if err := newUser.Validate(); err != nil {
		return nil, err
	}

	var profile *user.CandidateProfile
	if req.Profile != nil {
		profile = &user.CandidateProfile{
			UserID:            newUser.ID,
			Skills:            req.Profile.Skills,
			YearsExperience:   req.Profile.YearsExperience,
			ExpectedSalaryMin: req.Profile.ExpectedSalaryMin,
			ExpectedSalaryMax: req.Profile.ExpectedSalaryMax,
			SalaryCurrency:    req.Profile.SalaryCurrency,
			Education:         req.Profile.Education,
			Availability:      req.Profile.Availability,
			PortfolioURL:      req.Profile.PortfolioURL,
			LinkedinURL:       req.Profile.LinkedinURL,
			UpdatedAt:         now,
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}
	}

	var request *user.AccessRequest
	if newUser.IsPending() {
		request = &user.AccessRequest{
			ID:        kernel.NewAccessRequestID(uuid.NewString()),
			UserID:    newUser.ID,
			Status:    user.AccessRequestPending,
			CreatedAt: now,
		}
	}

	if err := s.userRepo.CreateCandidate(ctx, newUser, profile, request); err != nil {
		return nil, err
	}

	response := &user.SignupCandidateResponse{
		User: *usersrv.ToUserResponse(newUser),
	}

	if request != nil {
		response.AccessRequestID = &request.ID
		return response, nil
	}

	access, refresh, _, err := s.issueTokens(ctx, newUser)
	if err != nil {
		return nil, err
	}
	response.AccessToken = access
	response.RefreshToken = refresh

	return response, nil
}

// Login verifies email+password and issues a token pair. Unknown emails
// burn a dummy hash comparison so the failure timing matches a bad
// password, and both cases return the same error.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error) {
	userEntity, err := s.userRepo.GetByEmail(ctx, kernel.NewEmail(req.Email))
	if err != nil {
		s.passwordService.DummyVerify(req.Password)
		return nil, auth.ErrInvalidCredentials()
	}

	if err := s.passwordService.Verify(userEntity.PasswordHash, req.Password); err != nil {
		return nil, auth.ErrInvalidCredentials()
	}

	if err := userEntity.CanAuthenticate(); err != nil {
		return nil, err
	}

	access, refresh, expiresAt, err := s.issueTokens(ctx, userEntity)
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         *usersrv.ToUserResponse(userEntity),
	}, nil
}

// Refresh rotates the presented refresh token and mints a new access token.
// Tokens are single use: presenting an already-rotated token revokes every
// live token of the account.
func (s *AuthService) Refresh(ctx context.Context, req user.RefreshRequest) (*user.RefreshResponse, error) {
	hash := auth.HashToken(req.RefreshToken)

	stored, err := s.refreshTokenRepo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if stored.IsRevoked() {
		logx.Warnf("refresh token reuse detected for user %s, revoking all sessions", stored.UserID)
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, stored.UserID); err != nil {
			logx.Errorf("failed to revoke sessions of user %s: %v", stored.UserID, err)
		}
		return nil, auth.ErrTokenInvalid()
	}
	if stored.IsExpired(now) {
		return nil, auth.ErrTokenExpired()
	}

	userEntity, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, auth.ErrTokenInvalid()
	}
	if err := userEntity.CanAuthenticate(); err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Revoke(ctx, hash); err != nil {
		// Zero rows here means another request rotated it first.
		return nil, err
	}

	access, refresh, expiresAt, err := s.issueTokens(ctx, userEntity)
	if err != nil {
		return nil, err
	}

	return &user.RefreshResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// ChangePassword verifies the current password before storing the new one.
// All refresh tokens are revoked so stolen sessions cannot outlive the
// change.
func (s *AuthService) ChangePassword(ctx context.Context, userID kernel.UserID, req user.ChangePasswordRequest) error {
	userEntity, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwordService.Verify(userEntity.PasswordHash, req.CurrentPassword); err != nil {
		return auth.ErrInvalidCredentials()
	}

	if len(req.NewPassword) < auth.MinPasswordLength {
		return auth.ErrWeakPassword().WithDetail("min_length", auth.MinPasswordLength)
	}

	hash, err := s.passwordService.Hash(req.NewPassword)
	if err != nil {
		return errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	userEntity.PasswordHash = hash
	userEntity.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		return errx.Wrap(err, "failed to change password", errx.TypeInternal)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		logx.Warnf("failed to revoke refresh tokens after password change for user %s: %v", userID, err)
	}

	return nil
}

// Logout revokes the presented refresh token. Revoking a token that is
// already dead is a no-op, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, req user.LogoutRequest) error {
	hash := auth.HashToken(req.RefreshToken)
	if err := s.refreshTokenRepo.Revoke(ctx, hash); err != nil {
		if errx.IsCode(err, auth.CodeTokenInvalid) {
			return nil
		}
		return err
	}
	return nil
}

// issueTokens mints an access token and stores a fresh refresh token.
func (s *AuthService) issueTokens(ctx context.Context, userEntity *user.User) (string, string, time.Time, error) {
	access, expiresAt, err := s.tokenService.Mint(userEntity.Principal())
	if err != nil {
		return "", "", time.Time{}, err
	}

	refresh, err := auth.GenerateOpaqueToken()
	if err != nil {
		return "", "", time.Time{}, err
	}

	now := time.Now()
	stored := &user.RefreshToken{
		TokenHash: auth.HashToken(refresh),
		UserID:    userEntity.ID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return "", "", time.Time{}, errx.Wrap(err, "failed to store refresh token", errx.TypeInternal)
	}

	return access, refresh, expiresAt, nil
}
