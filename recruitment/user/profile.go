package user

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// CandidateProfile is the 1:1 extension of a candidate account.
type CandidateProfile struct {
	UserID            kernel.UserID `json:"user_id"`
	Skills            []string      `json:"skills"`
	YearsExperience   int           `json:"years_experience"`
	ExpectedSalaryMin *int          `json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax *int          `json:"expected_salary_max,omitempty"`
	SalaryCurrency    string        `json:"salary_currency,omitempty"`
	Education         string        `json:"education,omitempty"`
	Availability      string        `json:"availability,omitempty"`
	PortfolioURL      string        `json:"portfolio_url,omitempty"`
	LinkedinURL       string        `json:"linkedin_url,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Validate checks the profile's numeric invariants: non-negative experience
// and a coherent salary range.
func (p *CandidateProfile) Validate() error {
	if p.YearsExperience < 0 {
		return ErrInvalidProfile().WithDetail("field", "years_experience")
	}
	if p.ExpectedSalaryMin != nil && *p.ExpectedSalaryMin < 0 {
		return ErrInvalidProfile().WithDetail("field", "expected_salary_min")
	}
	if p.ExpectedSalaryMax != nil && *p.ExpectedSalaryMax < 0 {
		return ErrInvalidProfile().WithDetail("field", "expected_salary_max")
	}
	if p.ExpectedSalaryMin != nil && p.ExpectedSalaryMax != nil &&
		*p.ExpectedSalaryMin > *p.ExpectedSalaryMax {
		return ErrInvalidProfile().
			WithDetail("field", "expected_salary_min").
			WithDetail("reason", "minimum exceeds maximum")
	}
	return nil
}
