package access

import (
	"github.com/akeren/telecheck/config/router"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/ratelimit"
)

func NewAccessController(service AccessService) *router.RESTController {
	return router.NewVersionedRESTController(
		"AccessController",
		"v1",
		"/access",
		func(rs *router.RouterService, c *router.RESTController) {
			submitLimiter := createSubmitRateLimiter(rs)

			rs.AddGetHandler(c, nil, "/session", resolveSessionHandler(service))
			rs.AddPostHandler(c, submitLimiter, "/session", submitEmailHandler(service))
			rs.AddGetHandler(c, nil, "/roster", listRosterHandler(service))
			rs.AddPostHandler(c, nil, "/roster/:action", rosterActionHandler(service))
		},
	)
}

func createSubmitRateLimiter(rs *router.RouterService) ratelimit.RateLimiter {
	const submitRequestsPerMinute = 20

	return rs.RateLimiterFactory().PerMinute("access-submit", submitRequestsPerMinute)
}

func resolveSessionHandler(service AccessService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.Resolve(ctx.Request.Context(), router.SessionID(ctx))
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Session resolved")
	}
}

func submitEmailHandler(service AccessService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SubmitEmailRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Info("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Please enter a valid email address.", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Submit(ctx.Request.Context(), router.SessionID(ctx), &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Email submitted")
	}
}

func listRosterHandler(service AccessService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.ListRoster(ctx.Request.Context(), router.SessionID(ctx))
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Roster retrieved successfully")
	}
}

func rosterActionHandler(service AccessService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		action, ok := ParseAction(ctx.Param("action"))
		if !ok {
			return router.AppErrorResult(NewUnsupportedActionError())
		}

		var req RosterActionRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Info("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Transition(ctx.Request.Context(), router.SessionID(ctx), action, req.Email)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Roster updated")
	}
}
