package user

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound          = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeEmailAlreadyExists    = ErrRegistry.Register("EMAIL_ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Email already registered")
	CodeMatriculeExists       = ErrRegistry.Register("MATRICULE_ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Matricule already registered")
	CodeUserAlreadyActive     = ErrRegistry.Register("ALREADY_ACTIVE", errx.TypeConflict, http.StatusConflict, "User is already active")
	CodeUserAlreadyBlocked    = ErrRegistry.Register("ALREADY_BLOCKED", errx.TypeConflict, http.StatusConflict, "User is already blocked")
	CodeUserNotBlocked        = ErrRegistry.Register("NOT_BLOCKED", errx.TypeConflict, http.StatusConflict, "User is not blocked")
	CodeMissingCandidateInfo  = ErrRegistry.Register("MISSING_CANDIDATE_STATUS", errx.TypeValidation, http.StatusUnprocessableEntity, "Candidates must declare internal or external status")
	CodeInvalidUserData       = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusUnprocessableEntity, "Invalid user data")
	CodeInvalidProfile        = ErrRegistry.Register("INVALID_PROFILE", errx.TypeValidation, http.StatusUnprocessableEntity, "Invalid candidate profile")
	CodeProfileNotFound       = ErrRegistry.Register("PROFILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Candidate profile not found")
	CodeAccessRequestNotFound = ErrRegistry.Register("ACCESS_REQUEST_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Access request not found")
	CodeAccessRequestResolved = ErrRegistry.Register("ACCESS_REQUEST_RESOLVED", errx.TypeConflict, http.StatusConflict, "Access request is already resolved")
	CodeInvalidRequest        = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrEmailAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeEmailAlreadyExists)
}

func ErrMatriculeAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeMatriculeExists)
}

func ErrUserAlreadyActive() *errx.Error {
	return ErrRegistry.New(CodeUserAlreadyActive)
}

func ErrUserAlreadyBlocked() *errx.Error {
	return ErrRegistry.New(CodeUserAlreadyBlocked)
}

func ErrUserNotBlocked() *errx.Error {
	return ErrRegistry.New(CodeUserNotBlocked)
}

func ErrMissingCandidateStatus() *errx.Error {
	return ErrRegistry.New(CodeMissingCandidateInfo)
}

func ErrInvalidUserData() *errx.Error {
	return ErrRegistry.New(CodeInvalidUserData)
}

func ErrInvalidProfile() *errx.Error {
	return ErrRegistry.New(CodeInvalidProfile)
}

func ErrProfileNotFound() *errx.Error {
	return ErrRegistry.New(CodeProfileNotFound)
}

func ErrAccessRequestNotFound() *errx.Error {
	return ErrRegistry.New(CodeAccessRequestNotFound)
}

func ErrAccessRequestResolved() *errx.Error {
	return ErrRegistry.New(CodeAccessRequestResolved)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}
