package offer

import (
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// CreateOfferRequest - DTO for drafting a new offer
type CreateOfferRequest struct {
	Title          string       `json:"title" validate:"required"`
	Description    string       `json:"description"`
	Location       string       `json:"location"`
	Department     string       `json:"department"`
	ContractType   ContractType `json:"contract_type" validate:"required,oneof=CDI CDD Stage Alternance Freelance"`
	SalaryMin      *int         `json:"salary_min,omitempty"`
	SalaryMax      *int         `json:"salary_max,omitempty"`
	SalaryCurrency string       `json:"salary_currency,omitempty"`
	Visibility     Visibility   `json:"visibility" validate:"required,oneof=all internal external"`
	Questions      MTPQuestions `json:"questions"`
}

// UpdateOfferRequest - DTO for partial offer updates
type UpdateOfferRequest struct {
	Title          *string       `json:"title,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Location       *string       `json:"location,omitempty"`
	Department     *string       `json:"department,omitempty"`
	ContractType   *ContractType `json:"contract_type,omitempty"`
	SalaryMin      *int          `json:"salary_min,omitempty"`
	SalaryMax      *int          `json:"salary_max,omitempty"`
	SalaryCurrency *string       `json:"salary_currency,omitempty"`
	Visibility     *Visibility   `json:"visibility,omitempty"`
	Questions      *MTPQuestions `json:"questions,omitempty"`
}

// ListOffersRequest - DTO for the offer listing. Visibilities and Statuses
// are filled by the service from the caller's principal, never from the
// request body.
type ListOffersRequest struct {
	ContractType ContractType             `json:"contract_type,omitempty"`
	Department   string                   `json:"department,omitempty"`
	Search       string                   `json:"search,omitempty"`
	Status       OfferStatus              `json:"status,omitempty"`
	Visibilities []Visibility             `json:"-"`
	Statuses     []OfferStatus            `json:"-"`
	Pagination   kernel.PaginationOptions `json:"pagination"`
}

// Response type alias for paginated offers
type PaginatedOffersResponse = kernel.Paginated[Offer]

// StatsResponse - offer counts by lifecycle state
type StatsResponse struct {
	Total  int `json:"total"`
	Draft  int `json:"draft"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}
