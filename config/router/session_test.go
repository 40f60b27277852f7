package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akeren/telecheck/pkg/constants"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountSessionController(rs *RouterService) {
	ctrl := NewRESTController("SessionTestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "session", func(ctx *RequestContext) *ServiceResult {
			return OKResult(SessionID(ctx), "ok")
		})

		rs.AddRawHandler(c, nil, http.MethodPost, "raw", func(ctx *RequestContext) {
			ctx.String(http.StatusAccepted, "raw:"+SessionID(ctx))
		})
	})

	rs.MountController(ctrl)
}

func TestSessionID_GeneratedWhenMissing(t *testing.T) {
	rs := newTestRouterService(t)
	mountSessionController(rs)

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(constants.SessionIDHeader)
	_, err := uuid.Parse(issued)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), issued)
}

func TestSessionID_EchoesValidHeader(t *testing.T) {
	rs := newTestRouterService(t)
	mountSessionController(rs)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/raw", nil)
	req.Header.Set(constants.SessionIDHeader, id)

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, id, w.Header().Get(constants.SessionIDHeader))
	assert.Equal(t, "raw:"+id, w.Body.String())
}

func TestSessionID_ReplacesMalformedHeader(t *testing.T) {
	rs := newTestRouterService(t)
	mountSessionController(rs)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(constants.SessionIDHeader, "../../etc")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.NotEqual(t, "../../etc", w.Header().Get(constants.SessionIDHeader))
}

func TestAppErrorResult_CarriesNotification(t *testing.T) {
	err := apperrors.NewForbiddenError("Only the administrator can do that.", nil).WithTitle("Access Denied")

	result := AppErrorResult(err)

	assert.Equal(t, http.StatusForbidden, result.StatusCode)
	data, ok := result.Data.(NotificationData)
	require.True(t, ok)
	assert.Equal(t, "Access Denied", data.Title)
	assert.Equal(t, "destructive", data.Variant)

	generic := AppErrorResult(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, generic.StatusCode)
	assert.Equal(t, "An unexpected error occurred", generic.Message)
}

func TestMetricsRegisterer_AcceptsDomainCollectors(t *testing.T) {
	rs := newTestRouterService(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "telecheck_test_total", Help: "test"})
	require.NoError(t, rs.MetricsRegisterer().Register(counter))
}
