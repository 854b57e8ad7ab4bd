package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/modules/audit/domain/aggregates/entry"
	hierarchyperson "github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
)

// AuditService writes an append-only trail of hierarchy changes. It
// consumes the events the hierarchy module publishes after commit, so
// a lost entry never blocks or rolls back the change itself.
type AuditService struct {
	repo   entry.Repository
	pool   *pgxpool.Pool
	atomic composables.TxRunner
}

func NewAuditService(repo entry.Repository, pool *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo:   repo,
		pool:   pool,
		atomic: composables.InTenantTx,
	}
}

func (s *AuditService) GetPaginated(ctx context.Context, params *entry.FindParams) ([]entry.Entry, int64, error) {
	var (
		items []entry.Entry
		total int64
	)
	err := s.atomic(ctx, func(txCtx context.Context) error {
		var err error
		items, total, err = s.repo.GetPaginated(txCtx, params)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *AuditService) OnTransitionApplied(event hierarchyperson.TransitionAppliedEvent) {
	s.record(event.TenantID, entry.New(
		event.TenantID,
		entry.ActionTransition,
		[]uuid.UUID{event.PersonID},
		map[string]string{
			"kind":           event.Kind,
			"old_role":       string(event.OldRole),
			"new_role":       string(event.NewRole),
			"old_department": event.OldDepartmentID.String(),
			"new_department": event.NewDepartmentID.String(),
		},
		event.OccurredAt,
	))
}

func (s *AuditService) OnHeadsExchanged(event hierarchyperson.HeadsExchangedEvent) {
	s.record(event.TenantID, entry.New(
		event.TenantID,
		entry.ActionHeadsExchanged,
		[]uuid.UUID{event.HeadA, event.HeadB},
		map[string]string{
			"department_a": event.DepartmentA.String(),
			"department_b": event.DepartmentB.String(),
		},
		event.OccurredAt,
	))
}

func (s *AuditService) OnManagersExchanged(event hierarchyperson.ManagersExchangedEvent) {
	s.record(event.TenantID, entry.New(
		event.TenantID,
		entry.ActionManagersExchanged,
		[]uuid.UUID{event.ManagerA, event.ManagerB},
		map[string]string{
			"department_a": event.DepartmentA.String(),
			"department_b": event.DepartmentB.String(),
		},
		event.OccurredAt,
	))
}

func (s *AuditService) record(tenantID uuid.UUID, e entry.Entry) {
	// Handlers run outside any request, so the pool is attached by hand.
	ctx := composables.WithTenantID(context.Background(), tenantID)
	if s.pool != nil {
		ctx = composables.WithPool(ctx, s.pool)
	}
	err := s.atomic(ctx, func(txCtx context.Context) error {
		_, err := s.repo.Create(txCtx, e)
		return err
	})
	if err != nil {
		composables.UseLogger(ctx).
			WithField("action", e.Action()).
			WithError(err).
			Warn("failed to write audit entry")
	}
}
