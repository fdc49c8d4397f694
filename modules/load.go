package modules

import (
	"github.com/aquaops/pond-miniapp/modules/miniapp"
	"github.com/aquaops/pond-miniapp/pkg/application"
)

// BuiltInModules returns the modules every entrypoint registers.
func BuiltInModules(opts *miniapp.ModuleOptions) []application.Module {
	return []application.Module{
		miniapp.NewModule(opts),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
