package export

import (
	"errors"

	apperrors "github.com/akeren/telecheck/pkg/errors"
)

var (
	ErrNothingToExport = errors.New("no results match the export filter")
	ErrUnknownStatus   = errors.New("unknown export status")
)

func NewNothingToExportError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("There are no results matching the selected statuses.", ErrNothingToExport).
		WithTitle("No Results to Export")
}

func NewUnknownStatusError(status string) *apperrors.AppError {
	return apperrors.NewInvalidRequestError("Unknown status filter: "+status, ErrUnknownStatus).
		WithTitle("Invalid Filter")
}
