package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// HandlerFunction returns the JSON envelope written for the request.
type HandlerFunction func(*RequestContext) *ServiceResult

// ServiceResult is what a handler answers; StatusCode doubles as the envelope code.
type ServiceResult struct {
	StatusCode int
	Data       any
	Message    string
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Code    int    `json:"code"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func (result *ServiceResult) ToJSON() Envelope {
	return Envelope{Code: result.StatusCode, Data: result.Data, Message: result.Message}
}

// write sends result as the response body.
func (result *ServiceResult) write(c *RequestContext) {
	c.JSON(result.StatusCode, result.ToJSON())
}

// abort sends result and stops the handler chain.
func (result *ServiceResult) abort(c *RequestContext) {
	c.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

// RESTController groups the routes under one mount point.
type RESTController struct {
	name         string
	mountPoint   string
	version      string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

// routeKey identifies a registered route as gin reports it in FullPath.
type routeKey struct {
	method string
	path   string
}
