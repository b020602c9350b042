package application

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// DocumentType is the logical slot a PDF attachment fills. Required types
// must appear exactly once per application; optional types may repeat.
type DocumentType string

const (
	DocumentCV             DocumentType = "cv"
	DocumentCoverLetter    DocumentType = "cover_letter"
	DocumentDiploma        DocumentType = "diploma"
	DocumentCertificates   DocumentType = "certificates"
	DocumentRecommendation DocumentType = "recommendation"
	DocumentPortfolio      DocumentType = "portfolio"
	DocumentOther          DocumentType = "other"
)

// RequiredDocumentTypes returns the slots every application must fill, in
// reporting order.
func RequiredDocumentTypes() []DocumentType {
	return []DocumentType{DocumentCV, DocumentCoverLetter, DocumentDiploma}
}

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentCV, DocumentCoverLetter, DocumentDiploma,
		DocumentCertificates, DocumentRecommendation, DocumentPortfolio, DocumentOther:
		return true
	}
	return false
}

// IsRequired reports whether the type belongs to the mandatory set.
func (t DocumentType) IsRequired() bool {
	return t == DocumentCV || t == DocumentCoverLetter || t == DocumentDiploma
}

// Document is a PDF attached to an application. Documents are immutable
// once attached; there is no update path.
type Document struct {
	ID            kernel.DocumentID    `db:"id" json:"id"`
	ApplicationID kernel.ApplicationID `db:"application_id" json:"application_id"`
	Type          DocumentType         `db:"document_type" json:"document_type"`
	FileName      string               `db:"file_name" json:"file_name"`
	Content       []byte               `db:"content" json:"-"`
	MimeType      string               `db:"mime_type" json:"mime_type,omitempty"`
	SizeBytes     int64                `db:"size_bytes" json:"size_bytes"`
	UploadedAt    time.Time            `db:"uploaded_at" json:"uploaded_at"`
}
