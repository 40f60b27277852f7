package checks

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/telecheck/config/router"
)

const (
	EventStart    = "start"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

func NewChecksController(service CheckService, streamDelay time.Duration) *router.RESTController {
	return router.NewVersionedRESTController(
		"ChecksController",
		"v1",
		"/checks",
		func(rs *router.RouterService, c *router.RESTController) {
			runLimiter := rs.RateLimiterFactory().PerMinute("checks", 30)

			rs.AddPostHandler(c, runLimiter, "", runBulkHandler(service))
			rs.AddRawHandler(c, runLimiter, http.MethodPost, "/stream", streamBulkHandler(service, streamDelay))
			rs.AddGetHandler(c, nil, "/results", lastResultsHandler(service))
		},
	)
}

func bindBulkRequest(ctx *router.RequestContext) (*BulkCheckRequest, *router.ServiceResult) {
	var req BulkCheckRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		router.GetLogger(ctx).Info("Failed to bind request", "error", err)
		return nil, router.BadRequestResult("Invalid request body", nil)
	}

	return &req, nil
}

func runBulkHandler(service CheckService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		req, errResult := bindBulkRequest(ctx)
		if errResult != nil {
			return errResult
		}

		response, err := service.RunBulk(ctx.Request.Context(), router.SessionID(ctx), req, RunOptions{})
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, response.Notification.Title)
	}
}

// streamBulkHandler answers with server-sent events once the input has been
// accepted. Rejections before the first event are plain JSON errors.
func streamBulkHandler(service CheckService, delay time.Duration) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		logger := router.GetLogger(ctx)

		req, errResult := bindBulkRequest(ctx)
		if errResult != nil {
			ctx.JSON(errResult.StatusCode, errResult.ToJSON())
			return
		}

		// A paced run outlives the request timeout.
		if err := http.NewResponseController(ctx.Writer).SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("Could not clear write deadline", "error", err)
		}
		// The run and its stored results survive a disconnect; only the pacing stops.
		runCtx := context.WithoutCancel(ctx.Request.Context())

		streaming := false
		onProgress := func(p Progress) {
			event := EventProgress
			if !streaming {
				streaming = true
				event = EventStart
				ctx.Header("Cache-Control", "no-cache")
				ctx.Header("Connection", "keep-alive")
				ctx.Header("X-Accel-Buffering", "no")
			}
			ctx.SSEvent(event, p)
			ctx.Writer.Flush()
		}

		response, err := service.RunBulk(runCtx, router.SessionID(ctx), req, RunOptions{
			Delay:      delay,
			OnProgress: onProgress,
			Pacing:     ctx.Request.Context(),
		})
		if err != nil {
			result := router.AppErrorResult(err)
			if !streaming {
				ctx.JSON(result.StatusCode, result.ToJSON())
				return
			}
			ctx.SSEvent(EventError, result.ToJSON())
			ctx.Writer.Flush()
			return
		}

		ctx.SSEvent(EventComplete, response)
		ctx.Writer.Flush()
	}
}

func lastResultsHandler(service CheckService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.LastResults(ctx.Request.Context(), router.SessionID(ctx))
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Results retrieved successfully")
	}
}
