package application

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("APPLICATION")

var (
	CodeApplicationNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application not found")
	CodeDuplicateApplication    = ErrRegistry.Register("DUPLICATE", errx.TypeConflict, http.StatusConflict, "An active application for this offer already exists")
	CodeInvalidStatusTransition = ErrRegistry.Register("INVALID_STATUS_TRANSITION", errx.TypeConflict, http.StatusConflict, "Invalid application status transition")
	CodeCannotWithdraw          = ErrRegistry.Register("CANNOT_WITHDRAW", errx.TypeConflict, http.StatusConflict, "Application can no longer be withdrawn")
	CodeAnswerShapeMismatch     = ErrRegistry.Register("MTP_SHAPE_MISMATCH", errx.TypeValidation, http.StatusUnprocessableEntity, "Answers do not match the offer's question bundle")
	CodeInsufficientPermissions = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
	CodeInvalidApplicationData  = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusUnprocessableEntity, "Invalid application data")
	CodeInvalidRequest          = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
)

// Document checks carry their own registry so the error codes name the
// failing layer rather than the submission as a whole.
var DocRegistry = errx.NewRegistry("DOCUMENT")

var (
	CodeFileTooLarge              = DocRegistry.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "Document exceeds the size cap")
	CodeUnsupportedFileType       = DocRegistry.Register("UNSUPPORTED_TYPE", errx.TypeValidation, http.StatusUnprocessableEntity, "Only PDF documents are accepted")
	CodeInvalidFileFormat         = DocRegistry.Register("INVALID_FORMAT", errx.TypeValidation, http.StatusUnprocessableEntity, "File content is not a valid PDF")
	CodeUnknownDocumentType       = DocRegistry.Register("UNKNOWN_TYPE", errx.TypeValidation, http.StatusUnprocessableEntity, "Unknown document type")
	CodeMissingRequiredDocument   = DocRegistry.Register("MISSING_REQUIRED", errx.TypeValidation, http.StatusUnprocessableEntity, "Required documents are missing")
	CodeDuplicateRequiredDocument = DocRegistry.Register("DUPLICATE_REQUIRED", errx.TypeValidation, http.StatusUnprocessableEntity, "Required document types must appear exactly once")
	CodeDocumentNotFound          = DocRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Document not found")
)

func ErrApplicationNotFound() *errx.Error {
	return ErrRegistry.New(CodeApplicationNotFound)
}

func ErrDuplicateApplication() *errx.Error {
	return ErrRegistry.New(CodeDuplicateApplication)
}

func ErrInvalidStatusTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatusTransition)
}

func ErrCannotWithdraw() *errx.Error {
	return ErrRegistry.New(CodeCannotWithdraw)
}

func ErrAnswerShapeMismatch() *errx.Error {
	return ErrRegistry.New(CodeAnswerShapeMismatch)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}

func ErrInvalidApplicationData() *errx.Error {
	return ErrRegistry.New(CodeInvalidApplicationData)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrFileTooLarge() *errx.Error {
	return DocRegistry.New(CodeFileTooLarge)
}

func ErrUnsupportedFileType() *errx.Error {
	return DocRegistry.New(CodeUnsupportedFileType)
}

func ErrInvalidFileFormat() *errx.Error {
	return DocRegistry.New(CodeInvalidFileFormat)
}

func ErrUnknownDocumentType() *errx.Error {
	return DocRegistry.New(CodeUnknownDocumentType)
}

func ErrMissingRequiredDocument() *errx.Error {
	return DocRegistry.New(CodeMissingRequiredDocument)
}

func ErrDuplicateRequiredDocument() *errx.Error {
	return DocRegistry.New(CodeDuplicateRequiredDocument)
}

func ErrDocumentNotFound() *errx.Error {
	return DocRegistry.New(CodeDocumentNotFound)
}
