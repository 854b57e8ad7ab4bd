package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/modules/attendance/domain/aggregates/punch"
	hierarchyperson "github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
)

type PunchService struct {
	repo   punch.Repository
	pool   *pgxpool.Pool
	atomic composables.TxRunner
}

func NewPunchService(repo punch.Repository, pool *pgxpool.Pool) *PunchService {
	return &PunchService{
		repo:   repo,
		pool:   pool,
		atomic: composables.InTenantTx,
	}
}

func (s *PunchService) Record(ctx context.Context, dto *punch.CreateDTO) (punch.Punch, error) {
	if err := dto.Ok(); err != nil {
		return punch.Punch{}, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return punch.Punch{}, err
	}
	entity, err := dto.ToEntity(tenantID)
	if err != nil {
		return punch.Punch{}, err
	}

	var created punch.Punch
	err = s.atomic(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		return err
	})
	if err != nil {
		return punch.Punch{}, err
	}
	return created, nil
}

func (s *PunchService) GetPaginated(ctx context.Context, params *punch.FindParams) ([]punch.Punch, int64, error) {
	var (
		items []punch.Punch
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

// OnTransitionApplied re-tags the person's punches after a department
// move. Failures are logged and swallowed; the hierarchy change itself
// has already committed and attendance tags are best-effort.
func (s *PunchService) OnTransitionApplied(event hierarchyperson.TransitionAppliedEvent) {
	if event.OldDepartmentID == event.NewDepartmentID {
		return
	}

	// Handlers run outside any request, so the pool is attached by hand.
	ctx := composables.WithTenantID(context.Background(), event.TenantID)
	if s.pool != nil {
		ctx = composables.WithPool(ctx, s.pool)
	}
	err := s.atomic(ctx, func(txCtx context.Context) error {
		_, err := s.repo.RetagDepartment(txCtx, event.PersonID, event.OldDepartmentID, event.NewDepartmentID)
		return err
	})
	if err != nil {
		composables.UseLogger(ctx).
			WithField("person", event.PersonID).
			WithError(err).
			Warn("failed to re-tag attendance punches after transition")
	}
}
