package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/constants"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Database      int    `json:"database"`      // 1 = healthy, 0 = unhealthy/not configured
	Store         int    `json:"store"`         // 1 = healthy, 0 = unhealthy
	Notifications int    `json:"notifications"` // 1 = healthy, 0 = unhealthy
	StoreBackend  string `json:"store_backend"`
	Uptime        int    `json:"uptime"` // uptime in seconds
}

type MonitoringController struct {
	db           *gorm.DB
	logger       *log.Logger
	store        Pinger
	storeBackend string
	notifier     any
	startTime    time.Time
}

// NewMonitoringController reports on the key-value store, the optional SQL
// database and the notification fan-out when it can be pinged.
func NewMonitoringController(db *gorm.DB, logger *log.Logger, store Pinger, storeBackend string, notifier any) *router.RESTController {
	ctrl := &MonitoringController{
		db:           db,
		logger:       logger,
		store:        store,
		storeBackend: storeBackend,
		notifier:     notifier,
		startTime:    time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			monitoringRateLimiter := routerService.RateLimiterFactory().PerMinute("monitoring", 10)

			routerService.AddGetHandler(controller, monitoringRateLimiter, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	healthStatus := ctrl.performHealthChecks(ctx, logger)

	statusCode := http.StatusOK
	if healthStatus.Store == 0 {
		statusCode = http.StatusServiceUnavailable
	}

	return &router.ServiceResult{
		StatusCode: statusCode,
		Data:       healthStatus,
		Message:    constants.AppName + " health check completed",
	}
}

func (ctrl *MonitoringController) monitor(c *router.RequestContext) *router.ServiceResult {
	return &router.ServiceResult{
		StatusCode: http.StatusOK,
		Data:       constants.AppName + " is operational.",
		Message:    "Monitoring successful",
	}
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		StoreBackend: ctrl.storeBackend,
		Uptime:       int(time.Since(ctrl.startTime).Seconds()),
	}

	status.Store = pingDependency(ctx, logger, "Store", ctrl.store)
	status.Database = pingDependency(ctx, logger, "Database", ctrl.databasePinger())

	if pinger, ok := ctrl.notifier.(Pinger); ok {
		status.Notifications = pingDependency(ctx, logger, "Notifications", pinger)
	} else {
		status.Notifications = 1 // log-only delivery cannot fail
	}

	return status
}

func (ctrl *MonitoringController) databasePinger() Pinger {
	if ctrl.db == nil {
		return nil
	}
	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return nil
	}
	return pingFunc(sqlDB.PingContext)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func pingDependency(ctx context.Context, logger *log.Logger, name string, target Pinger) int {
	if target == nil {
		logger.Info(name + " not configured, health check skipped")
		return 0
	}

	if err := target.Ping(ctx); err != nil {
		logger.Error(name+" health check failed", "error", err)
		return 0
	}

	logger.Info(name + " health check passed")
	return 1
}
