package user

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// ParseBirthDate parses the YYYY-MM-DD date accepted by signup DTOs. An
// empty string means the field was omitted.
func ParseBirthDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, ErrInvalidUserData().
			WithDetail("field", "date_of_birth").
			WithDetail("expected_format", "YYYY-MM-DD")
	}
	return &t, nil
}

// ProfileInput - candidate profile fields accepted at signup and update
type ProfileInput struct {
	Skills            []string `json:"skills,omitempty"`
	YearsExperience   int      `json:"years_experience"`
	ExpectedSalaryMin *int     `json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax *int     `json:"expected_salary_max,omitempty"`
	SalaryCurrency    string   `json:"salary_currency,omitempty"`
	Education         string   `json:"education,omitempty"`
	Availability      string   `json:"availability,omitempty"`
	PortfolioURL      string   `json:"portfolio_url,omitempty"`
	LinkedinURL       string   `json:"linkedin_url,omitempty"`
}

// RegisterCandidateRequest - DTO for candidate self-signup
type RegisterCandidateRequest struct {
	Email            string               `json:"email" validate:"required,email"`
	Password         string               `json:"password" validate:"required,min=12"`
	FirstName        string               `json:"first_name" validate:"required"`
	LastName         string               `json:"last_name" validate:"required"`
	Phone            string               `json:"phone,omitempty"`
	Sexe             Sexe                 `json:"sexe" validate:"required,oneof=M F"`
	DateOfBirth      string               `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Matricule        *int                 `json:"matricule,omitempty"`
	CandidateStatus  auth.CandidateStatus `json:"candidate_status" validate:"required,oneof=internal external"`
	NoCorporateEmail bool                 `json:"no_corporate_email"`
	Profile          *ProfileInput        `json:"profile,omitempty"`
}

// CreateUserRequest - DTO for admin-created accounts
type CreateUserRequest struct {
	Email           string               `json:"email" validate:"required,email"`
	Password        string               `json:"password" validate:"required,min=12"`
	Role            auth.Role            `json:"role" validate:"required"`
	FirstName       string               `json:"first_name" validate:"required"`
	LastName        string               `json:"last_name" validate:"required"`
	Phone           string               `json:"phone,omitempty"`
	Sexe            Sexe                 `json:"sexe" validate:"required,oneof=M F"`
	DateOfBirth     string               `json:"date_of_birth,omitempty"`
	Matricule       *int                 `json:"matricule,omitempty"`
	CandidateStatus auth.CandidateStatus `json:"candidate_status,omitempty"`
}

// LoginRequest - DTO for password authentication
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest - DTO for redeeming a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest - DTO for revoking a refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest - DTO for password mutation
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=12"`
}

// UpdateProfileRequest - DTO for candidates editing their own profile
type UpdateProfileRequest struct {
	Skills            *[]string `json:"skills,omitempty"`
	YearsExperience   *int      `json:"years_experience,omitempty"`
	ExpectedSalaryMin *int      `json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax *int      `json:"expected_salary_max,omitempty"`
	SalaryCurrency    *string   `json:"salary_currency,omitempty"`
	Education         *string   `json:"education,omitempty"`
	Availability      *string   `json:"availability,omitempty"`
	PortfolioURL      *string   `json:"portfolio_url,omitempty"`
	LinkedinURL       *string   `json:"linkedin_url,omitempty"`
}

// ListUsersRequest - DTO for the admin user listing
type ListUsersRequest struct {
	Role       auth.Role                `json:"role,omitempty"`
	Status     auth.UserStatus          `json:"status,omitempty"`
	Pagination kernel.PaginationOptions `json:"pagination"`
}

// UserResponse - redacted account view; never carries the password hash
type UserResponse struct {
	ID               kernel.UserID        `json:"id"`
	Email            kernel.Email         `json:"email"`
	Role             auth.Role            `json:"role"`
	Status           auth.UserStatus      `json:"status"`
	FirstName        kernel.FirstName     `json:"first_name"`
	LastName         kernel.LastName      `json:"last_name"`
	Phone            kernel.Phone         `json:"phone,omitempty"`
	Sexe             Sexe                 `json:"sexe"`
	DateOfBirth      *time.Time           `json:"date_of_birth,omitempty"`
	Matricule        *int                 `json:"matricule,omitempty"`
	CandidateStatus  auth.CandidateStatus `json:"candidate_status,omitempty"`
	NoCorporateEmail bool                 `json:"no_corporate_email"`
	CreatedAt        time.Time            `json:"created_at"`
}

// Response type alias for paginated users
type PaginatedUsersResponse = kernel.Paginated[UserResponse]

// AuthResponse - tokens plus the redacted user view
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// SignupCandidateResponse - signup outcome; tokens only for active accounts
type SignupCandidateResponse struct {
	User            UserResponse            `json:"user"`
	AccessToken     string                  `json:"access_token,omitempty"`
	RefreshToken    string                  `json:"refresh_token,omitempty"`
	AccessRequestID *kernel.AccessRequestID `json:"access_request_id,omitempty"`
}

// RefreshResponse - new access token and the rotated refresh token
type RefreshResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ProfileResponse - candidate profile view
type ProfileResponse struct {
	CandidateProfile
}

// AccessRequestResponse - access request with the requesting user attached
type AccessRequestResponse struct {
	AccessRequest
	User UserResponse `json:"user"`
}

// Response type alias for paginated access requests
type PaginatedAccessRequestsResponse = kernel.Paginated[AccessRequestResponse]
