package hierarchy

import (
	"embed"

	"github.com/hivehr/hivehr/modules/hierarchy/infrastructure/persistence"
	"github.com/hivehr/hivehr/modules/hierarchy/presentation/controllers"
	"github.com/hivehr/hivehr/modules/hierarchy/services"
	"github.com/hivehr/hivehr/pkg/application"
)

//go:embed infrastructure/persistence/schema/hierarchy-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	personRepo := persistence.NewPersonRepository()
	departmentRepo := persistence.NewDepartmentRepository()

	app.RegisterServices(
		services.NewTransitionService(personRepo, departmentRepo, app.EventPublisher()),
		services.NewExchangeService(personRepo, departmentRepo, app.EventPublisher()),
		services.NewQueryService(personRepo, departmentRepo),
		services.NewRosterExportService(personRepo, departmentRepo),
	)

	app.RegisterControllers(
		controllers.NewHierarchyAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "hierarchy"
}
