package access

import (
	"github.com/akeren/telecheck/config/router"
)

// NewDevController exposes the debug affordances. It must only be mounted
// outside production.
func NewDevController(service AccessService) *router.RESTController {
	return router.NewVersionedRESTController(
		"DevController",
		"v1",
		"/dev",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, nil, "/reset", func(ctx *router.RequestContext) *router.ServiceResult {
				if err := service.Reset(ctx.Request.Context(), router.SessionID(ctx)); err != nil {
					return router.AppErrorResult(err)
				}
				return router.OKResult(nil, "State reset")
			})

			rs.AddPostHandler(c, nil, "/force-admin", func(ctx *router.RequestContext) *router.ServiceResult {
				if err := service.ForceAdminApproved(ctx.Request.Context()); err != nil {
					return router.AppErrorResult(err)
				}
				return router.OKResult(nil, "Admin approved")
			})

			rs.AddPostHandler(c, nil, "/force-current-user", func(ctx *router.RequestContext) *router.ServiceResult {
				response, err := service.ForceCurrentUserApproved(ctx.Request.Context(), router.SessionID(ctx))
				if err != nil {
					return router.AppErrorResult(err)
				}
				return router.OKResult(response, "Current user approved")
			})
		},
	)
}
