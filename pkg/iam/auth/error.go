package auth

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeUnauthenticated     = ErrRegistry.Register("UNAUTHENTICATED", errx.TypeAuthentication, http.StatusUnauthorized, "Authentication required")
	CodeTokenInvalid        = ErrRegistry.Register("TOKEN_INVALID", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid token")
	CodeTokenExpired        = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthentication, http.StatusUnauthorized, "Token has expired")
	CodeInvalidCredentials  = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid email or password")
	CodeWebhookTokenInvalid = ErrRegistry.Register("WEBHOOK_TOKEN_INVALID", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid webhook token")
	CodeForbidden           = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
	CodeAccountPending      = ErrRegistry.Register("ACCOUNT_PENDING", errx.TypeAuthorization, http.StatusForbidden, "Account is pending activation")
	CodeAccountBlocked      = ErrRegistry.Register("ACCOUNT_BLOCKED", errx.TypeAuthorization, http.StatusForbidden, "Account is blocked")
	CodeWeakPassword        = ErrRegistry.Register("WEAK_PASSWORD", errx.TypeValidation, http.StatusUnprocessableEntity, "Password does not meet the minimum length")
)

func ErrUnauthenticated() *errx.Error {
	return ErrRegistry.New(CodeUnauthenticated)
}

func ErrTokenInvalid() *errx.Error {
	return ErrRegistry.New(CodeTokenInvalid)
}

func ErrTokenExpired() *errx.Error {
	return ErrRegistry.New(CodeTokenExpired)
}

func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrWebhookTokenInvalid() *errx.Error {
	return ErrRegistry.New(CodeWebhookTokenInvalid)
}

func ErrForbidden() *errx.Error {
	return ErrRegistry.New(CodeForbidden)
}

func ErrAccountPending() *errx.Error {
	return ErrRegistry.New(CodeAccountPending)
}

func ErrAccountBlocked() *errx.Error {
	return ErrRegistry.New(CodeAccountBlocked)
}

func ErrWeakPassword() *errx.Error {
	return ErrRegistry.New(CodeWeakPassword)
}
