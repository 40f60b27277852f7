package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestAppError_UnwrapsCause(t *testing.T) {
	err := NewConflictError("cannot revoke the only approved admin", errSentinel).WithTitle("Action Refused")
	wrapped := fmt.Errorf("revoke: %w", err)

	assert.True(t, errors.Is(wrapped, errSentinel))
	assert.Equal(t, ErrorTypeConflict, GetErrorType(wrapped))
	assert.Equal(t, "Action Refused", GetTitle(wrapped))
	assert.Equal(t, "cannot revoke the only approved admin", GetHumanReadableMessage(wrapped))
	assert.Equal(t, StatusConflict, HTTPStatusCode(wrapped))
}

func TestHumanReadableMessage_HidesForeignErrors(t *testing.T) {
	err := errors.New("pq: connection refused")

	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(err))
	assert.Equal(t, "Something went wrong", GetTitle(err))
	assert.Equal(t, StatusInternalServerError, HTTPStatusCode(err))
	assert.Equal(t, ErrorTypeUnknown, GetErrorType(err))
}

func TestHTTPStatusCode_MapsTypes(t *testing.T) {
	cases := map[*AppError]int{
		NewInvalidRequestError("bad", nil): StatusBadRequest,
		NewForbiddenError("no", nil):       StatusForbidden,
		NewNotFoundError("gone", nil):      StatusNotFound,
		NewDatabaseError("db", nil):        StatusInternalServerError,
	}

	for err, expected := range cases {
		assert.Equal(t, expected, HTTPStatusCode(err), err.Type)
	}
}

func TestIsType(t *testing.T) {
	assert.True(t, IsType(NewForbiddenError("no", nil), ErrorTypeForbidden))
	assert.False(t, IsType(nil, ErrorTypeForbidden))
}

type exportRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Statuses []string `json:"statuses" validate:"omitempty,max=3,dive,oneof=found not_found error"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	req := exportRequest{Email: "nope", Statuses: []string{"found", "processing"}}
	err := validator.New().Struct(&req)
	require.Error(t, err)

	fields := FormatValidationErrors(err, &req)

	assert.Equal(t, []FieldError{
		{Field: "email", Message: "Invalid email format"},
		{Field: "statuses[1]", Message: "Must be one of: found, not_found, error"},
	}, fields)
}

func TestFormatValidationErrors_IgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FormatValidationErrors(errors.New("unexpected EOF"), nil))
	assert.Nil(t, FormatValidationErrors(nil, nil))
}
