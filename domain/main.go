package domain

import (
	"github.com/akeren/telecheck/config"
	"github.com/akeren/telecheck/domain/access"
	"github.com/akeren/telecheck/domain/checks"
	"github.com/akeren/telecheck/domain/export"
	"github.com/akeren/telecheck/domain/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

// Services are the domain services built from one application configuration.
// The HTTP server mounts their controllers; the CLI calls them directly.
type Services struct {
	Access access.AccessService
	Checks checks.CheckService
	Export export.ExportService

	accessFactory access.AccessServiceFactory
	checksFactory *checks.DefaultCheckServiceFactory
	exportFactory export.ExportServiceFactory
}

type Option func(*options)

type options struct {
	lookup checks.Lookup
}

// WithLookup replaces the random simulator, e.g. with a checks.ScriptedLookup.
func WithLookup(lookup checks.Lookup) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

func AccessPolicy(cfg *config.AppConfig) access.Policy {
	return access.Policy{
		AdminEmail:         cfg.AdminEmail,
		AdminCaseSensitive: cfg.AdminEmailCaseSensitive,
		AllowedDomains:     cfg.AllowedEmailDomains,
		AutoApproveAllowed: cfg.AutoApproveAllowedDomains,
	}
}

func NewServices(appConfig *config.ApplicationConfig, opts ...Option) *Services {
	cfg := appConfig.Config

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	accessFactory := access.NewAccessServiceFactory(appConfig.Store, appConfig.Logger, appConfig.Notifier, AccessPolicy(cfg))
	accessService := accessFactory.CreateService()

	// The CLI has no router and runs without metrics.
	var reg prometheus.Registerer
	if appConfig.RouterService != nil {
		reg = appConfig.RouterService.MetricsRegisterer()
	}

	checksFactory := checks.NewCheckServiceFactory(
		appConfig.Store,
		appConfig.Logger,
		accessService,
		appConfig.Notifier,
		reg,
		checks.Config{MaxBulkNumbers: cfg.MaxBulkNumbers},
		cfg.CheckDelay,
	)
	if o.lookup != nil {
		checksFactory.WithLookup(o.lookup)
	}

	exportFactory := export.NewExportServiceFactory(appConfig.Store, appConfig.Logger, accessService, appConfig.Notifier)

	return &Services{
		Access:        accessService,
		Checks:        checksFactory.CreateService(),
		Export:        exportFactory.CreateService(),
		accessFactory: accessFactory,
		checksFactory: checksFactory,
		exportFactory: exportFactory,
	}
}

func SetupCoreDomain(appConfig *config.ApplicationConfig, opts ...Option) *Services {
	services := NewServices(appConfig, opts...)
	rs := appConfig.RouterService

	rs.MountController(monitoring.NewMonitoringController(appConfig.DB, appConfig.Logger, appConfig.Store, appConfig.StoreBackend, appConfig.Notifier))
	rs.MountController(services.accessFactory.CreateController())
	rs.MountController(services.checksFactory.CreateController())
	rs.MountController(services.exportFactory.CreateController())

	if appConfig.Config.DevControlsEnabled() {
		appConfig.Logger.Warn("Dev controls mounted under /v1/dev", "app_env", appConfig.Config.AppEnv)
		rs.MountController(services.accessFactory.CreateDevController())
	}

	return services
}
