package router

import (
	"net/http"

	"github.com/akeren/telecheck/internal/log"
	apperrors "github.com/akeren/telecheck/pkg/errors"
)

var fallbackLogger = log.NewLoggerWithJSONOutput()

// GetLogger returns the request-scoped logger injected by the router.
func GetLogger(ctx *RequestContext) *log.Logger {
	if logger, ok := ctx.Request.Context().Value(log.LoggerKeyForContext).(*log.Logger); ok && logger != nil {
		return logger
	}
	return fallbackLogger.WithCorrelationID(ctx.Request.Context())
}

func newResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Data: data, Message: message}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return newResult(statusCode, message, data)
}

func OKResult(data any, message string) *ServiceResult {
	return newResult(http.StatusOK, message, data)
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return newResult(http.StatusBadRequest, message, payload)
}

func NotFoundResult(message string) *ServiceResult {
	return newResult(http.StatusNotFound, message, nil)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return newResult(http.StatusInternalServerError, message, nil)
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return newResult(http.StatusTooManyRequests, "Too Many Requests", data)
}

// NotificationData is the payload clients render as a toast.
type NotificationData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// AppErrorResult maps err to its HTTP status and carries a destructive
// notification for the client.
func AppErrorResult(err error) *ServiceResult {
	message := apperrors.GetHumanReadableMessage(err)

	return ErrorResult(
		apperrors.HTTPStatusCode(err),
		message,
		NotificationData{
			Title:       apperrors.GetTitle(err),
			Description: message,
			Variant:     "destructive",
		},
	)
}
