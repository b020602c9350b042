package application

import (
	"bytes"
	"strings"
)

// pdfMagic is the signature every PDF starts with. The validator checks
// these four bytes and nothing deeper; real PDF parsing is not its job.
var pdfMagic = []byte("%PDF")

// DefaultDocumentSizeCap is the per-file byte limit (10 MiB) used unless
// configuration overrides it.
const DefaultDocumentSizeCap = 10 * 1024 * 1024

// DocumentValidator runs the ordered document checks of a submission. It is
// pure: no I/O, no clock, no state beyond the configured size cap, so the
// writer can call it inside its transaction without side effects.
type DocumentValidator struct {
	sizeCap int64
}

// NewDocumentValidator creates a validator with the given per-file size cap.
// Non-positive caps fall back to the default.
func NewDocumentValidator(sizeCap int64) *DocumentValidator {
	if sizeCap <= 0 {
		sizeCap = DefaultDocumentSizeCap
	}
	return &DocumentValidator{sizeCap: sizeCap}
}

// Validate applies the checks in their fixed order: per file size cap, then
// .pdf extension, then the %PDF magic, then the type whitelist; across the
// set, every required type exactly once. It returns documents annotated
// with the canonical type and computed size; identity fields are left for
// the writer to fill.
func (v *DocumentValidator) Validate(uploads []DocumentUpload) ([]Document, error) {
	documents := make([]Document, 0, len(uploads))

	for _, upload := range uploads {
		if int64(len(upload.Content)) > v.sizeCap {
			return nil, ErrFileTooLarge().
				WithDetail("file_name", upload.FileName).
				WithDetail("size_bytes", len(upload.Content)).
				WithDetail("cap_bytes", v.sizeCap)
		}

		if !strings.HasSuffix(strings.ToLower(upload.FileName), ".pdf") {
			return nil, ErrUnsupportedFileType().
				WithDetail("file_name", upload.FileName)
		}

		if len(upload.Content) < len(pdfMagic) || !bytes.HasPrefix(upload.Content, pdfMagic) {
			return nil, ErrInvalidFileFormat().
				WithDetail("file_name", upload.FileName)
		}

		docType := DocumentType(strings.ToLower(strings.TrimSpace(upload.DocumentType)))
		if !docType.IsValid() {
			return nil, ErrUnknownDocumentType().
				WithDetail("file_name", upload.FileName).
				WithDetail("document_type", upload.DocumentType)
		}

		documents = append(documents, Document{
			Type:      docType,
			FileName:  upload.FileName,
			Content:   upload.Content,
			MimeType:  upload.MimeType,
			SizeBytes: int64(len(upload.Content)),
		})
	}

	counts := make(map[DocumentType]int, len(documents))
	for _, doc := range documents {
		counts[doc.Type]++
	}

	missing := make([]string, 0, 3)
	for _, required := range RequiredDocumentTypes() {
		if counts[required] == 0 {
			missing = append(missing, string(required))
		}
	}
	if len(missing) > 0 {
		return nil, ErrMissingRequiredDocument().
			WithDetail("missing", missing)
	}

	for _, required := range RequiredDocumentTypes() {
		if counts[required] > 1 {
			return nil, ErrDuplicateRequiredDocument().
				WithDetail("document_type", string(required)).
				WithDetail("count", counts[required])
		}
	}

	return documents, nil
}
