package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/ratelimit"
	"github.com/akeren/telecheck/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const DefaultTimeoutDuration = 30 * time.Second

// Cache is the part of the kv store the router needs. A store that also
// implements ratelimit.RedisClientProvider lends its client to the limiters.
type Cache interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

type RouterService struct {
	engine          *gin.Engine
	server          *http.Server
	logger          *log.Logger
	policy          httpPolicy
	requestTimeout  time.Duration
	redisClient     *redis.Client
	metricsRegistry *prometheus.Registry

	defaultLimiter     ratelimit.RateLimiter
	routes             map[routeKey]*RESTController
	routeLimiters      map[routeKey]ratelimit.RateLimiter
	controllerLimiters map[string]ratelimit.RateLimiter
}

func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode := utils.GetEnvTrimmed("GIN_MODE"); mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	timeout := routerConfig.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeoutDuration
	}

	rs := &RouterService{
		engine:             gin.New(),
		logger:             logger,
		policy:             loadHTTPPolicy(),
		requestTimeout:     timeout,
		routes:             make(map[routeKey]*RESTController),
		routeLimiters:      make(map[routeKey]ratelimit.RateLimiter),
		controllerLimiters: make(map[string]ratelimit.RateLimiter),
	}

	rs.engine.Use(gin.Recovery())

	if tracing := utils.TracingFromEnv(); tracing.Enabled {
		rs.engine.Use(otelgin.Middleware(tracing.ServiceName))
		logger.Info("Tracing middleware enabled")
	}

	rs.applyTrustedProxies()
	rs.connectLimiterBacking(cache)
	rs.defaultLimiter = rs.RateLimiterFactory().New("global", ratelimit.Limit{
		Requests: routerConfig.RateLimitRequests,
		Window:   routerConfig.RateLimitWindow,
	})
	logger.Info("Rate limiting initialized",
		"distributed", rs.redisClient != nil,
		"requests", routerConfig.RateLimitRequests,
		"window", routerConfig.RateLimitWindow,
	)

	rs.mountMetrics()

	// Identity first so every later middleware logs with correlation and session IDs.
	rs.engine.Use(
		rs.correlationIDMiddleware(),
		rs.sessionIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.requestLoggingMiddleware(),
		rs.securityHeadersMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.rateLimitMiddleware(),
		rs.timeoutMiddleware(),
	)

	rs.engine.HandleMethodNotAllowed = true
	rs.engine.RedirectTrailingSlash = true
	rs.engine.NoRoute(func(c *gin.Context) {
		GetLogger(c).Warn("Route not found", "path", c.Request.URL.Path)
		NotFoundResult("Route not found").write(c)
	})
	rs.engine.NoMethod(func(c *gin.Context) {
		GetLogger(c).Warn("Method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		ErrorResult(http.StatusMethodNotAllowed, "Method not allowed", nil).write(c)
	})

	// Handlers run on the request goroutine, so the server timeouts are what
	// bound a slow client. Streaming handlers lift the write deadline themselves.
	rs.server = &http.Server{
		Handler:           rs.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized")
	return rs
}

func (routerService *RouterService) applyTrustedProxies() {
	proxies := routerService.policy.trustedProxies
	if err := routerService.engine.SetTrustedProxies(proxies); err != nil {
		routerService.logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = routerService.engine.SetTrustedProxies(nil)
		return
	}
	if proxies == nil {
		routerService.logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}
}

// connectLimiterBacking borrows the store's Redis client when it answers a ping.
func (routerService *RouterService) connectLimiterBacking(cache Cache) {
	provider, ok := cache.(ratelimit.RedisClientProvider)
	if !ok || provider.GetClient() == nil {
		return
	}

	client := provider.GetClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		routerService.logger.Warn("Redis unreachable for rate limiting, using in-memory limiters", "error", err)
		return
	}
	routerService.redisClient = client
}

// RateLimiterFactory builds limiters on the same backing as the global limiter.
func (routerService *RouterService) RateLimiterFactory() *ratelimit.Factory {
	return ratelimit.NewFactoryWithClient(routerService.redisClient, routerService.logger)
}

// LimitController applies limiter to every route of the controller that has
// no limiter of its own.
func (routerService *RouterService) LimitController(controller *RESTController, limiter ratelimit.RateLimiter) {
	if _, taken := routerService.controllerLimiters[controller.mountPoint]; taken {
		panic(fmt.Sprintf("controller %q already has a rate limiter", controller.name))
	}
	routerService.controllerLimiters[controller.mountPoint] = limiter
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"version", controller.version,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", "8080")
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}

func (routerService *RouterService) Cleanup() {
	limiters := []ratelimit.RateLimiter{routerService.defaultLimiter}
	for _, l := range routerService.routeLimiters {
		limiters = append(limiters, l)
	}
	for _, l := range routerService.controllerLimiters {
		limiters = append(limiters, l)
	}

	for _, l := range limiters {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}
