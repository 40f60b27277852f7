package monitoring

import (
	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/internal/log"
	"gorm.io/gorm"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	db           *gorm.DB
	logger       *log.Logger
	store        Pinger
	storeBackend string
	notifier     any
}

func NewMonitoringControllerFactory(db *gorm.DB, logger *log.Logger, store Pinger, storeBackend string, notifier any) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		db:           db,
		logger:       logger,
		store:        store,
		storeBackend: storeBackend,
		notifier:     notifier,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.db, f.logger, f.store, f.storeBackend, f.notifier)
}
