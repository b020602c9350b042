package application

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// DocumentUpload - one attachment as it arrives at the boundary. Content is
// base64 on the wire; encoding/json decodes it exactly once and the bytes
// are never re-encoded before persistence.
type DocumentUpload struct {
	DocumentType string `json:"document_type" validate:"required"`
	FileName     string `json:"file_name" validate:"required"`
	Content      []byte `json:"content" validate:"required"`
	MimeType     string `json:"mime_type,omitempty"`
}

// SubmitApplicationRequest - DTO for submitting a new application
type SubmitApplicationRequest struct {
	OfferID    kernel.OfferID     `json:"offer_id" validate:"required"`
	Answers    MTPAnswers         `json:"answers"`
	Management bool               `json:"management"`
	Contacts   []ReferenceContact `json:"reference_contacts,omitempty"`
	Documents  []DocumentUpload   `json:"documents" validate:"required,min=1"`

	// RequestID carries the optional X-Request-Id header value; never read
	// from the body.
	RequestID string `json:"-"`
}

// ListApplicationsRequest - DTO for the application listing. CandidateID is
// forced to the caller for candidate principals, never taken from the query.
type ListApplicationsRequest struct {
	OfferID     kernel.OfferID           `json:"offer_id,omitempty"`
	Status      ApplicationStatus        `json:"status,omitempty"`
	CandidateID kernel.UserID            `json:"-"`
	Pagination  kernel.PaginationOptions `json:"pagination"`
}

// UpdateStatusRequest - DTO for recruiter-driven status transitions
type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required"`
	Reason string            `json:"reason,omitempty"`
}

// DocumentResponse - attachment metadata, never the bytes
type DocumentResponse struct {
	ID           kernel.DocumentID `json:"id"`
	DocumentType DocumentType      `json:"document_type"`
	FileName     string            `json:"file_name"`
	MimeType     string            `json:"mime_type,omitempty"`
	SizeBytes    int64             `json:"size_bytes"`
	UploadedAt   time.Time         `json:"uploaded_at"`
}

// ApplicationResponse - DTO for returning application data
type ApplicationResponse struct {
	ID              kernel.ApplicationID `json:"id"`
	OfferID         kernel.OfferID       `json:"offer_id"`
	CandidateID     kernel.UserID        `json:"candidate_id"`
	Status          ApplicationStatus    `json:"status"`
	Answers         MTPAnswers           `json:"answers"`
	Management      bool                 `json:"management"`
	Contacts        []ReferenceContact   `json:"reference_contacts,omitempty"`
	Documents       []DocumentResponse   `json:"documents"`
	StatusChangedAt *time.Time           `json:"status_changed_at,omitempty"`
	SubmittedAt     time.Time            `json:"submitted_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Response type alias for paginated applications
type PaginatedApplicationsResponse = kernel.Paginated[ApplicationResponse]
