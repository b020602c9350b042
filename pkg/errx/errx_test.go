package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry("WIDGET")
	code := registry.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "Widget not found")

	t.Run("codes carry the registry prefix", func(t *testing.T) {
		assert.Equal(t, Code("WIDGET_NOT_FOUND"), code)
	})

	t.Run("New instantiates the registered definition", func(t *testing.T) {
		err := registry.New(code)

		assert.Equal(t, code, err.Code)
		assert.Equal(t, TypeNotFound, err.Type)
		assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
		assert.Equal(t, "Widget not found", err.Message)
	})

	t.Run("unknown codes degrade to internal", func(t *testing.T) {
		err := registry.New(Code("WIDGET_NEVER_REGISTERED"))

		assert.Equal(t, TypeInternal, err.Type)
		assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	})

	t.Run("NewWithCause exposes the cause to errors.Is", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := registry.NewWithCause(code, cause)

		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestError_WithDetail(t *testing.T) {
	registry := NewRegistry("WIDGET")
	code := registry.Register("INVALID", TypeValidation, http.StatusUnprocessableEntity, "Invalid widget")

	err := registry.New(code).
		WithDetail("field", "name").
		WithDetail("max", 10)

	assert.Equal(t, "name", err.Details["field"])
	assert.Equal(t, 10, err.Details["max"])

	t.Run("details survive into the HTTP response", func(t *testing.T) {
		resp := err.ToHTTPResponse()

		assert.Equal(t, code, resp.Code)
		assert.Equal(t, TypeValidation, resp.Type)
		assert.Equal(t, "name", resp.Details["field"])
	})
}

func TestWrap(t *testing.T) {
	registry := NewRegistry("WIDGET")
	code := registry.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "Widget not found")

	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "ignored", TypeInternal))
	})

	t.Run("plain errors become typed", func(t *testing.T) {
		wrapped := Wrap(errors.New("boom"), "something failed", TypeInternal)

		require.NotNil(t, wrapped)
		assert.Equal(t, TypeInternal, wrapped.Type)
		assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus)
		assert.Equal(t, "something failed", wrapped.Message)
	})

	t.Run("existing typed errors pass through unchanged", func(t *testing.T) {
		original := registry.New(code).WithDetail("id", "42")

		wrapped := Wrap(original, "would overwrite", TypeInternal)

		assert.Same(t, original, wrapped)
		assert.Equal(t, code, wrapped.Code)
	})

	t.Run("typed errors buried in a chain still pass through", func(t *testing.T) {
		original := registry.New(code)
		buried := fmt.Errorf("outer: %w", original)

		wrapped := Wrap(buried, "would overwrite", TypeInternal)

		assert.Equal(t, code, wrapped.Code)
	})
}

func TestIsCodeAndIsType(t *testing.T) {
	registry := NewRegistry("WIDGET")
	code := registry.Register("CONFLICT", TypeConflict, http.StatusConflict, "Widget conflict")

	err := registry.New(code)

	assert.True(t, IsCode(err, code))
	assert.False(t, IsCode(err, Code("WIDGET_OTHER")))
	assert.True(t, IsType(err, TypeConflict))
	assert.False(t, IsType(err, TypeNotFound))

	t.Run("wrapped chains are searched", func(t *testing.T) {
		buried := fmt.Errorf("outer: %w", err)
		assert.True(t, IsCode(buried, code))
	})

	t.Run("plain errors match nothing", func(t *testing.T) {
		assert.False(t, IsCode(errors.New("boom"), code))
		assert.False(t, IsType(errors.New("boom"), TypeInternal))
	})
}

func TestDefaultStatus(t *testing.T) {
	tests := []struct {
		errType Type
		status  int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeNotFound, http.StatusNotFound},
		{TypeConflict, http.StatusConflict},
		{TypeAuthentication, http.StatusUnauthorized},
		{TypeAuthorization, http.StatusForbidden},
		{TypeBusiness, http.StatusUnprocessableEntity},
		{TypeExternal, http.StatusBadGateway},
		{TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			wrapped := Wrap(errors.New("boom"), "msg", tt.errType)
			assert.Equal(t, tt.status, wrapped.HTTPStatus)
		})
	}
}
