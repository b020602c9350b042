package lake

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("LAKE")

// Lake failures surface as 500 at the internal webhook boundary only; the
// candidate-facing submission path never sees them.
var (
	CodeWriteFailed      = ErrRegistry.Register("WRITE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to write application snapshot to the object lake")
	CodeBundleLoadFailed = ErrRegistry.Register("BUNDLE_LOAD_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to load application bundle")
	CodeBundleNotFound   = ErrRegistry.Register("BUNDLE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application not found")
	CodeInvalidRequest   = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
)

func ErrWriteFailed() *errx.Error {
	return ErrRegistry.New(CodeWriteFailed)
}

func ErrBundleLoadFailed() *errx.Error {
	return ErrRegistry.New(CodeBundleLoadFailed)
}

func ErrBundleNotFound() *errx.Error {
	return ErrRegistry.New(CodeBundleNotFound)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}
