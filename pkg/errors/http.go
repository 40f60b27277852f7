package errors

import "net/http"

const (
	StatusBadRequest          = http.StatusBadRequest
	StatusForbidden           = http.StatusForbidden
	StatusNotFound            = http.StatusNotFound
	StatusConflict            = http.StatusConflict
	StatusInternalServerError = http.StatusInternalServerError
)

var statusByType = map[string]int{
	ErrorTypeInvalidRequest:      StatusBadRequest,
	ErrorTypeForbidden:           StatusForbidden,
	ErrorTypeNotFound:            StatusNotFound,
	ErrorTypeConflict:            StatusConflict,
	ErrorTypeDatabaseError:       StatusInternalServerError,
	ErrorTypeInternalServerError: StatusInternalServerError,
}

// HTTPStatusCode maps an error to its response status. Foreign and nil
// errors are 500s.
func HTTPStatusCode(err error) int {
	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}
	return StatusInternalServerError
}
