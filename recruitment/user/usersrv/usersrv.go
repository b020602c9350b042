package usersrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/notification"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// UserService provides account administration, access request review and
// candidate profile operations.
type UserService struct {
	userRepo          user.Repository
	profileRepo       user.ProfileRepository
	accessRequestRepo user.AccessRequestRepository
	refreshTokenRepo  user.RefreshTokenRepository
	notificationRepo  notification.Repository
	passwordService   auth.PasswordService
}

// NewUserService creates a new instance of the user service
func NewUserService(
	userRepo user.Repository,
	profileRepo user.ProfileRepository,
	accessRequestRepo user.AccessRequestRepository,
	refreshTokenRepo user.RefreshTokenRepository,
	notificationRepo notification.Repository,
	passwordService auth.PasswordService,
) *UserService {
	return &UserService{
		userRepo:          userRepo,
		profileRepo:       profileRepo,
		accessRequestRepo: accessRequestRepo,
		refreshTokenRepo:  refreshTokenRepo,
		notificationRepo:  notificationRepo,
		passwordService:   passwordService,
	}
}

// CreateUser creates an account with any role. Admin-created accounts start
// active; the activation workflow only applies to candidate self-signup.
func (s *UserService) CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.UserResponse, error) {
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
		ID:              kernel.NewUserID(uuid.NewString()),
		Email:           kernel.NewEmail(req.Email),
		PasswordHash:    hash,
		Role:            req.Role,
		Status:          auth.StatusActive,
		FirstName:       kernel.FirstName(req.FirstName),
		LastName:        kernel.LastName(req.LastName),
		Phone:           kernel.Phone(req.Phone),
		Sexe:            req.Sexe,
		DateOfBirth:     dateOfBirth,
		Matricule:       req.Matricule,
		CandidateStatus: req.CandidateStatus,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := newUser.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	return ToUserResponse(newUser), nil
}

// GetUser retrieves an account by ID
func (s *UserService) GetUser(ctx context.Context, id kernel.UserID) (*user.UserResponse, error) {
	userEntity, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(userEntity), nil
}

// ListUsers retrieves accounts filtered by role and status
func (s *UserService) ListUsers(ctx context.Context, req user.ListUsersRequest) (*user.PaginatedUsersResponse, error) {
	req.Pagination = req.Pagination.Normalized()

	users, err := s.userRepo.List(ctx, req)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list users", errx.TypeInternal)
	}

	responses := make([]user.UserResponse, 0, len(users.Items))
	for _, u := range users.Items {
		responses = append(responses, *ToUserResponse(&u))
	}

	return &kernel.Paginated[user.UserResponse]{
		Items: responses,
		Page:  users.Page,
		Empty: users.Empty,
	}, nil
}

// ActivateUser directly activates a pending or blocked account. A pending
// access request of the user, if any, is resolved as approved.
func (s *UserService) ActivateUser(ctx context.Context, id kernel.UserID, actorID kernel.UserID) (*user.UserResponse, error) {
	userEntity, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := userEntity.Activate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		return nil, errx.Wrap(err, "failed to activate user", errx.TypeInternal)
	}

	if request, err := s.accessRequestRepo.GetPendingByUserID(ctx, id); err == nil {
		if err := request.Approve(actorID); err == nil {
			if err := s.accessRequestRepo.Update(ctx, request); err != nil {
				logx.Warnf("failed to resolve access request %s for activated user %s: %v", request.ID, id, err)
			}
		}
	}

	s.notifyActivated(ctx, userEntity)

	return ToUserResponse(userEntity), nil
}

// BlockUser suspends an account and revokes its refresh tokens so open
// sessions die with the current access token.
func (s *UserService) BlockUser(ctx context.Context, id kernel.UserID) (*user.UserResponse, error) {
	userEntity, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := userEntity.Block(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		return nil, errx.Wrap(err, "failed to block user", errx.TypeInternal)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, id); err != nil {
		logx.Warnf("failed to revoke refresh tokens for blocked user %s: %v", id, err)
	}

	return ToUserResponse(userEntity), nil
}

// UnblockUser restores a blocked account to active
func (s *UserService) UnblockUser(ctx context.Context, id kernel.UserID) (*user.UserResponse, error) {
	userEntity, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := userEntity.Unblock(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		return nil, errx.Wrap(err, "failed to unblock user", errx.TypeInternal)
	}

	return ToUserResponse(userEntity), nil
}

// ============================================================================
// Access Requests
// ============================================================================

// ListPendingAccessRequests retrieves open signup requests for review
func (s *UserService) ListPendingAccessRequests(ctx context.Context, pagination kernel.PaginationOptions) (*user.PaginatedAccessRequestsResponse, error) {
	requests, err := s.accessRequestRepo.ListPending(ctx, pagination.Normalized())
	if err != nil {
		return nil, errx.Wrap(err, "failed to list access requests", errx.TypeInternal)
	}

	return requests, nil
}

// ApproveAccessRequest resolves a signup request and activates the account
func (s *UserService) ApproveAccessRequest(ctx context.Context, requestID kernel.AccessRequestID, approverID kernel.UserID) (*user.AccessRequestResponse, error) {
	request, err := s.accessRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := request.Approve(approverID); err != nil {
		return nil, err
	}

	userEntity, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	if !userEntity.IsActive() {
		if err := userEntity.Activate(); err != nil {
			return nil, err
		}
		if err := s.userRepo.Update(ctx, userEntity); err != nil {
			return nil, errx.Wrap(err, "failed to activate user", errx.TypeInternal)
		}
	}

	if err := s.accessRequestRepo.Update(ctx, request); err != nil {
		return nil, errx.Wrap(err, "failed to resolve access request", errx.TypeInternal)
	}

	s.notifyActivated(ctx, userEntity)

	return &user.AccessRequestResponse{
		AccessRequest: *request,
		User:          *ToUserResponse(userEntity),
	}, nil
}

// RejectAccessRequest resolves a signup request negatively. The account
// stays pending and cannot authenticate.
func (s *UserService) RejectAccessRequest(ctx context.Context, requestID kernel.AccessRequestID, approverID kernel.UserID) (*user.AccessRequestResponse, error) {
	request, err := s.accessRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := request.Reject(approverID); err != nil {
		return nil, err
	}

	if err := s.accessRequestRepo.Update(ctx, request); err != nil {
		return nil, errx.Wrap(err, "failed to resolve access request", errx.TypeInternal)
	}

	userEntity, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	return &user.AccessRequestResponse{
		AccessRequest: *request,
		User:          *ToUserResponse(userEntity),
	}, nil
}

// ============================================================================
// Candidate Profiles
// ============================================================================

// GetProfile retrieves the candidate profile of a user
func (s *UserService) GetProfile(ctx context.Context, userID kernel.UserID) (*user.ProfileResponse, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &user.ProfileResponse{CandidateProfile: *profile}, nil
}

// UpdateProfile applies a partial profile update for a candidate. A missing
// profile row starts from zero values.
func (s *UserService) UpdateProfile(ctx context.Context, userID kernel.UserID, req user.UpdateProfileRequest) (*user.ProfileResponse, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errx.IsCode(err, user.CodeProfileNotFound) {
			return nil, err
		}
		profile = &user.CandidateProfile{UserID: userID}
	}

	if req.Skills != nil {
		profile.Skills = *req.Skills
	}
	if req.YearsExperience != nil {
		profile.YearsExperience = *req.YearsExperience
	}
	if req.ExpectedSalaryMin != nil {
		profile.ExpectedSalaryMin = req.ExpectedSalaryMin
	}
	if req.ExpectedSalaryMax != nil {
		profile.ExpectedSalaryMax = req.ExpectedSalaryMax
	}
	if req.SalaryCurrency != nil {
		profile.SalaryCurrency = *req.SalaryCurrency
	}
	if req.Education != nil {
		profile.Education = *req.Education
	}
	if req.Availability != nil {
		profile.Availability = *req.Availability
	}
	if req.PortfolioURL != nil {
		profile.PortfolioURL = *req.PortfolioURL
	}
	if req.LinkedinURL != nil {
		profile.LinkedinURL = *req.LinkedinURL
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, errx.Wrap(err, "failed to update profile", errx.TypeInternal)
	}

	return &user.ProfileResponse{CandidateProfile: *profile}, nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// notifyActivated appends the account-activated notification, best effort.
func (s *UserService) notifyActivated(ctx context.Context, userEntity *user.User) {
	n := &notification.Notification{
		ID:        kernel.NewNotificationID(uuid.NewString()),
		UserID:    userEntity.ID,
		Type:      notification.TypeAccountActivated,
		Title:     "Account activated",
		Body:      "Your account has been activated. You can now sign in and apply to job offers.",
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logx.Warnf("failed to append activation notification for user %s: %v", userEntity.ID, err)
	}
}

// ToUserResponse converts a User entity to the redacted response DTO
func ToUserResponse(u *user.User) *user.UserResponse {
	return &user.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		Status:           u.Status,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Phone:            u.Phone,
		Sexe:             u.Sexe,
		DateOfBirth:      u.DateOfBirth,
		Matricule:        u.Matricule,
		CandidateStatus:  u.CandidateStatus,
		NoCorporateEmail: u.NoCorporateEmail,
		CreatedAt:        u.CreatedAt,
	}
}
