package checks

import (
	"time"

	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/kvstore"
	"github.com/akeren/telecheck/pkg/notify"
	"github.com/prometheus/client_golang/prometheus"
)

type CheckServiceFactory interface {
	CreateService() CheckService
	CreateController() *router.RESTController
}

type DefaultCheckServiceFactory struct {
	store       kvstore.Store
	logger      *log.Logger
	gate        AccessGate
	notifier    notify.Notifier
	lookup      Lookup
	metrics     *Metrics
	config      Config
	streamDelay time.Duration
}

// NewCheckServiceFactory wires the production simulator. Metrics are
// registered on reg when it is not nil.
func NewCheckServiceFactory(
	store kvstore.Store,
	logger *log.Logger,
	gate AccessGate,
	notifier notify.Notifier,
	reg prometheus.Registerer,
	config Config,
	streamDelay time.Duration,
) *DefaultCheckServiceFactory {
	return &DefaultCheckServiceFactory{
		store:       store,
		logger:      logger,
		gate:        gate,
		notifier:    notifier,
		lookup:      NewRandomSimulator(),
		metrics:     NewMetrics(reg),
		config:      config,
		streamDelay: streamDelay,
	}
}

// WithLookup swaps the lookup, e.g. for deterministic runs.
func (f *DefaultCheckServiceFactory) WithLookup(lookup Lookup) *DefaultCheckServiceFactory {
	f.lookup = lookup
	return f
}

func (f *DefaultCheckServiceFactory) CreateService() CheckService {
	repository := NewResultsRepository(f.store)
	return NewCheckService(f.logger, f.gate, repository, f.lookup, f.notifier, f.metrics, f.config)
}

func (f *DefaultCheckServiceFactory) CreateController() *router.RESTController {
	return NewChecksController(f.CreateService(), f.streamDelay)
}
