package export

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/akeren/telecheck/config/router"
	apperrors "github.com/akeren/telecheck/pkg/errors"
)

func NewExportController(service ExportService) *router.RESTController {
	return router.NewVersionedRESTController(
		"ExportController",
		"v1",
		"/exports",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.RateLimiterFactory().PerMinute("exports", 10)

			rs.AddRawHandler(c, limiter, http.MethodPost, "", exportHandler(service))
		},
	)
}

// exportHandler answers with the workbook bytes; failures use the JSON envelope.
func exportHandler(service ExportService) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		var req ExportRequest

		// An empty body exports every status.
		if ctx.Request.ContentLength != 0 {
			if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				router.GetLogger(ctx).Info("Failed to bind request", "error", err)
				result := router.BadRequestResult("Invalid request body", apperrors.FormatValidationErrors(err, &req))
				ctx.JSON(result.StatusCode, result.ToJSON())
				return
			}
		}

		file, err := service.Export(ctx.Request.Context(), router.SessionID(ctx), &req)
		if err != nil {
			result := router.AppErrorResult(err)
			ctx.JSON(result.StatusCode, result.ToJSON())
			return
		}

		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
		ctx.Header("X-Export-Rows", strconv.Itoa(file.Rows))
		ctx.Data(http.StatusOK, file.ContentType, file.Content)
	}
}
