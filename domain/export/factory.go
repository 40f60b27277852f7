package export

import (
	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/domain/checks"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/kvstore"
	"github.com/akeren/telecheck/pkg/notify"
)

type ExportServiceFactory interface {
	CreateService() ExportService
	CreateController() *router.RESTController
}

type DefaultExportServiceFactory struct {
	store    kvstore.Store
	logger   *log.Logger
	gate     Gate
	notifier notify.Notifier
}

func NewExportServiceFactory(store kvstore.Store, logger *log.Logger, gate Gate, notifier notify.Notifier) ExportServiceFactory {
	return &DefaultExportServiceFactory{
		store:    store,
		logger:   logger,
		gate:     gate,
		notifier: notifier,
	}
}

func (f *DefaultExportServiceFactory) CreateService() ExportService {
	return NewExportService(f.logger, f.gate, checks.NewResultsRepository(f.store), f.notifier)
}

func (f *DefaultExportServiceFactory) CreateController() *router.RESTController {
	return NewExportController(f.CreateService())
}
