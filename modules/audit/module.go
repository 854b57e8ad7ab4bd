package audit

import (
	"embed"

	"github.com/hivehr/hivehr/modules/audit/infrastructure/persistence"
	"github.com/hivehr/hivehr/modules/audit/presentation/controllers"
	"github.com/hivehr/hivehr/modules/audit/services"
	"github.com/hivehr/hivehr/pkg/application"
)

//go:embed infrastructure/persistence/schema/audit-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	auditService := services.NewAuditService(persistence.NewEntryRepository(), app.DB())

	app.RegisterServices(auditService)
	app.RegisterControllers(
		controllers.NewAuditAPIController(app),
	)

	publisher := app.EventPublisher()
	publisher.Subscribe(auditService.OnTransitionApplied)
	publisher.Subscribe(auditService.OnHeadsExchanged)
	publisher.Subscribe(auditService.OnManagersExchanged)

	return nil
}

func (m *Module) Name() string {
	return "audit"
}
