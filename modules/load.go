package modules

import (
	"github.com/hivehr/hivehr/modules/attendance"
	"github.com/hivehr/hivehr/modules/audit"
	"github.com/hivehr/hivehr/modules/hierarchy"
	"github.com/hivehr/hivehr/pkg/application"
)

var BuiltInModules = []application.Module{
	hierarchy.NewModule(),
	attendance.NewModule(),
	audit.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
