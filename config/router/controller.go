package router

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/akeren/telecheck/pkg/ratelimit"
)

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(mountPoint),
		prepare:    prepare,
	}
}

// NewVersionedRESTController mounts the controller under /<version>/<mountPoint>.
func NewVersionedRESTController(name, version, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(version, mountPoint),
		version:    version,
		prepare:    prepare,
	}
}

// joinRoute builds an absolute route without a trailing slash. path.Join
// would also clean gin's ":param" segments, which it leaves intact.
func joinRoute(segments ...string) string {
	var parts []string
	for _, s := range segments {
		for _, p := range strings.Split(s, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	return path.Clean("/" + strings.Join(parts, "/"))
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, limiter, http.MethodGet, path, append(middlewares, jsonHandler(handler)))
}

func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, limiter, http.MethodPost, path, append(middlewares, jsonHandler(handler)))
}

// AddRawHandler registers a handler that writes the response itself, such as
// an event stream or a file download. It gets the same rate limiting and
// controller bookkeeping as the JSON handlers.
func (routerService *RouterService) AddRawHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	method string,
	path string,
	handler MiddlewareFunc,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, limiter, method, path, append(middlewares, handler))
}

func (routerService *RouterService) register(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	method, relativePath string,
	chain []MiddlewareFunc,
) {
	key := routeKey{method: method, path: joinRoute(controller.mountPoint, relativePath)}

	if owner, taken := routerService.routes[key]; taken {
		panic(fmt.Sprintf("%s %s is already registered by controller %q", key.method, key.path, owner.name))
	}
	routerService.routes[key] = controller

	if limiter != nil {
		routerService.routeLimiters[key] = limiter
	}

	controller.handlerCount++
	routerService.engine.Handle(method, key.path, chain...)
	routerService.logger.Debug("Handler registered", "controller", controller.name, "method", method, "path", key.path)
}

func jsonHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)
		if result == nil {
			GetLogger(c).Error("Handler returned no result", "path", c.FullPath())
			result = InternalServerErrorResult("The server could not produce a response.")
		}
		result.write(c)
	}
}
