package router

import "github.com/akeren/telecheck/pkg/ratelimit"

// limiterFor picks the route's own limiter, then its controller's, then the global one.
func (routerService *RouterService) limiterFor(key routeKey, controller *RESTController) ratelimit.RateLimiter {
	if limiter, ok := routerService.routeLimiters[key]; ok {
		return limiter
	}
	if limiter, ok := routerService.controllerLimiters[controller.mountPoint]; ok {
		return limiter
	}
	return routerService.defaultLimiter
}
