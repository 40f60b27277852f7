package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/constants"
	"github.com/gin-gonic/gin"
)

const correlationIDHeader = "X-Correlation-ID"

var (
	corsAllowHeaders = strings.Join([]string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept", "Origin",
		"Cache-Control", "X-Requested-With", correlationIDHeader, constants.SessionIDHeader,
	}, ", ")
	corsExposeHeaders = strings.Join([]string{
		constants.SessionIDHeader, correlationIDHeader, "Content-Disposition", "X-Export-Rows", "Retry-After",
	}, ", ")
)

func withContextValue(c *gin.Context, key, value any) {
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), key, value))
}

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationIDHeader)
		if id == "" {
			id = log.GenerateCorrelationID()
		}
		withContextValue(c, log.CorrelatedIDKey, id)
		c.Header(correlationIDHeader, id)
		c.Next()
	}
}

// loggerInjectionMiddleware stores a logger carrying the correlation and
// session IDs; handlers fetch it with GetLogger.
func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := routerService.logger.WithCorrelationID(c.Request.Context())
		if sessionID := log.GetSessionID(c.Request.Context()); sessionID != "" {
			logger = logger.WithSessionID(sessionID)
		}
		withContextValue(c, log.LoggerKeyForContext, logger)
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}

		logger := GetLogger(c)
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP request", attrs...)
			return
		}
		logger.Info("HTTP request", attrs...)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	policy := routerService.policy

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if policy.hsts && servedOverTLS(c) {
			h.Set("Strict-Transport-Security", policy.hstsValue)
		}
		c.Next()
	}
}

// servedOverTLS also trusts X-Forwarded-Proto for TLS terminated at a proxy.
func servedOverTLS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	limit := routerService.policy.maxBodyBytes

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			ErrorResult(http.StatusRequestEntityTooLarge, "Request payload too large", nil).abort(c)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// corsMiddleware only answers origins listed in CORS_ALLOWED_ORIGIN. The
// front-end must be able to read X-Session-ID to keep its session.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	policy := routerService.policy
	if len(policy.allowedOrigins) == 0 {
		routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set, cross-origin requests will be refused")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !policy.originAllowed(origin) {
			if origin != "" {
				GetLogger(c).Warn("CORS origin not allowed", "origin", origin)
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// timeoutMiddleware gives handlers a deadline. It never runs the chain on
// another goroutine because gin.Context is not safe for concurrent use; if the
// deadline passed and nothing was written, the client gets a 408.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	timeout := routerService.requestTimeout

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			GetLogger(c).Warn("Request timeout detected", "timeout", timeout.String())
			ErrorResult(http.StatusRequestTimeout, "Request timeout", nil).abort(c)
		}
	}
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routeKey{method: c.Request.Method, path: c.FullPath()}

		controller, known := routerService.routes[key]
		if !known {
			// Unmatched paths fall through to NoRoute/NoMethod.
			if c.FullPath() == "" {
				c.Next()
				return
			}
			GetLogger(c).Error("Route registered outside a controller", "method", key.method, "path", key.path)
			NotFoundResult("There is no handler configured for " + c.Request.URL.Path).abort(c)
			return
		}

		limiter := routerService.limiterFor(key, controller)
		limit := limiter.Limit()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Window", limit.Window.String())

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Keep serving when the limiter backing is down.
			routerService.logger.Error("Rate limiter error", "error", err, "client_ip", c.ClientIP())
			c.Next()
			return
		}

		if !allowed {
			GetLogger(c).Warn("Rate limit exceeded", "client_ip", c.ClientIP(), "path", key.path)
			retryAfter := strconv.Itoa(limit.RetryAfter())
			c.Header("Retry-After", retryAfter)
			TooManyRequestsResult(RateLimitResponse{
				Limit:      limit.Requests,
				Window:     limit.Window.String(),
				RetryAfter: retryAfter,
			}).abort(c)
			return
		}

		c.Next()
	}
}
