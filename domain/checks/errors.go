package checks

import (
	"errors"
	"fmt"

	apperrors "github.com/akeren/telecheck/pkg/errors"
)

// Sentinel errors for the checks domain.
var (
	ErrNoNumbers      = errors.New("no phone numbers entered")
	ErrTooManyNumbers = errors.New("too many phone numbers")
	ErrMalformedRun   = errors.New("stored results are malformed")
)

func NewNoNumbersError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("Please enter valid phone numbers to check.", ErrNoNumbers).
		WithTitle("No Numbers Entered")
}

func NewTooManyNumbersError(limit, entered int) *apperrors.AppError {
	return apperrors.NewInvalidRequestError(
		fmt.Sprintf("Please enter up to %d numbers for bulk check. You entered %d.", limit, entered),
		ErrTooManyNumbers,
	).WithTitle("Too Many Numbers")
}
