package notification

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("NOTIFICATION")

var (
	CodeNotificationNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Notification not found")
	CodeInvalidNotification  = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusUnprocessableEntity, "Invalid notification data")
)

func ErrNotificationNotFound() *errx.Error {
	return ErrRegistry.New(CodeNotificationNotFound)
}

func ErrInvalidNotification() *errx.Error {
	return ErrRegistry.New(CodeInvalidNotification)
}
