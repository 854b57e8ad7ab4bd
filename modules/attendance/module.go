package attendance

import (
	"embed"

	"github.com/hivehr/hivehr/modules/attendance/infrastructure/persistence"
	"github.com/hivehr/hivehr/modules/attendance/presentation/controllers"
	"github.com/hivehr/hivehr/modules/attendance/services"
	"github.com/hivehr/hivehr/pkg/application"
)

//go:embed infrastructure/persistence/schema/attendance-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	punchService := services.NewPunchService(persistence.NewPunchRepository(), app.DB())

	app.RegisterServices(punchService)
	app.RegisterControllers(
		controllers.NewAttendanceAPIController(app),
	)

	// Keep department tags in sync with hierarchy moves.
	app.EventPublisher().Subscribe(punchService.OnTransitionApplied)

	return nil
}

func (m *Module) Name() string {
	return "attendance"
}
