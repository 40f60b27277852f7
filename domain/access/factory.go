package access

import (
	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/kvstore"
	"github.com/akeren/telecheck/pkg/notify"
)

type AccessServiceFactory interface {
	CreateService() AccessService
	CreateController() *router.RESTController
	CreateDevController() *router.RESTController
}

type DefaultAccessServiceFactory struct {
	store    kvstore.Store
	logger   *log.Logger
	notifier notify.Notifier
	policy   Policy
}

func NewAccessServiceFactory(store kvstore.Store, logger *log.Logger, notifier notify.Notifier, policy Policy) AccessServiceFactory {
	return &DefaultAccessServiceFactory{
		store:    store,
		logger:   logger,
		notifier: notifier,
		policy:   policy,
	}
}

func (f *DefaultAccessServiceFactory) CreateService() AccessService {
	repository := NewAccessRepository(f.store)
	return NewAccessService(f.logger, repository, f.notifier, f.policy)
}

func (f *DefaultAccessServiceFactory) CreateController() *router.RESTController {
	return NewAccessController(f.CreateService())
}

func (f *DefaultAccessServiceFactory) CreateDevController() *router.RESTController {
	return NewDevController(f.CreateService())
}
