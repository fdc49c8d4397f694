package application

import (
	"embed"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/sirupsen/logrus"

	"github.com/aquaops/pond-miniapp/pkg/eventbus"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Name() string
	Register(app Application) error
}

// Application is the registry modules plug their services, controllers and
// locale files into.
type Application interface {
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Bundle() *i18n.Bundle
	GetSupportedLanguages() []string
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterLocaleFiles(fs ...*embed.FS)
	RegisterServices(services ...any)
	Service(service any) any
	Services() map[reflect.Type]any
}
