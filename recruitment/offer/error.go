package offer

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OFFER")

var (
	CodeOfferNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job offer not found")
	CodeOfferNotVisible   = ErrRegistry.Register("NOT_VISIBLE", errx.TypeAuthorization, http.StatusForbidden, "Job offer is not available for your profile")
	CodeOfferClosed       = ErrRegistry.Register("CLOSED", errx.TypeConflict, http.StatusConflict, "Job offer no longer accepts applications")
	CodeInvalidTransition = ErrRegistry.Register("INVALID_TRANSITION", errx.TypeConflict, http.StatusConflict, "Invalid offer status transition")
	CodeQuestionsFrozen   = ErrRegistry.Register("QUESTIONS_FROZEN", errx.TypeConflict, http.StatusConflict, "Questions cannot change once the offer is open")
	CodeNotOwner          = ErrRegistry.Register("NOT_OWNER", errx.TypeAuthorization, http.StatusForbidden, "Only the offer owner may modify it")
	CodeInvalidOfferData  = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusUnprocessableEntity, "Invalid offer data")
	CodeInvalidRequest    = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
)

func ErrOfferNotFound() *errx.Error {
	return ErrRegistry.New(CodeOfferNotFound)
}

func ErrOfferNotVisible() *errx.Error {
	return ErrRegistry.New(CodeOfferNotVisible)
}

func ErrOfferClosed() *errx.Error {
	return ErrRegistry.New(CodeOfferClosed)
}

func ErrInvalidTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidTransition)
}

func ErrQuestionsFrozen() *errx.Error {
	return ErrRegistry.New(CodeQuestionsFrozen)
}

func ErrNotOwner() *errx.Error {
	return ErrRegistry.New(CodeNotOwner)
}

func ErrInvalidOfferData() *errx.Error {
	return ErrRegistry.New(CodeInvalidOfferData)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}
