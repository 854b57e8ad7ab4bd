package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
	"github.com/hivehr/hivehr/pkg/eventbus"
	"github.com/hivehr/hivehr/pkg/metrics"
)

type TransitionCommand struct {
	PersonID uuid.UUID
	// TargetRole must be one of the three hierarchy roles.
	TargetRole person.Role
	// TargetDepartmentID is required for a head target; for other
	// targets a nil id defaults to the person's current department.
	TargetDepartmentID uuid.UUID
	// ExplicitManagerID is only meaningful for a member target.
	ExplicitManagerID uuid.UUID
}

// TransitionResult carries the full post-commit state of everything the
// transition touched, so callers can render the updated org chart
// without a follow-up read.
type TransitionResult struct {
	Kind        TransitionKind
	Person      person.Person
	Affected    []person.Person
	Departments []department.Department
}

type TransitionService struct {
	persons     person.Repository
	departments department.Repository
	publisher   eventbus.EventBus
	atomic      composables.TxRunner
}

func NewTransitionService(
	persons person.Repository,
	departments department.Repository,
	publisher eventbus.EventBus,
) *TransitionService {
	return &TransitionService{
		persons:     persons,
		departments: departments,
		publisher:   publisher,
		atomic:      composables.InTenantTx,
	}
}

// ApplyTransition moves one person between hierarchy roles and/or
// departments. The whole operation is computed on locked rows, checked
// against the hierarchy invariants and committed atomically; any error
// leaves the stored state untouched.
func (s *TransitionService) ApplyTransition(ctx context.Context, cmd TransitionCommand) (*TransitionResult, error) {
	if cmd.PersonID == uuid.Nil {
		return nil, validationError("person id is required")
	}
	if !cmd.TargetRole.IsHierarchical() {
		return nil, roleMismatchError("target role %q is not a hierarchy role", cmd.TargetRole)
	}

	start := time.Now()
	var (
		result *TransitionResult
		event  *person.TransitionAppliedEvent
	)

	err := s.atomic(ctx, func(txCtx context.Context) error {
		// Peek at the person to learn which departments to lock; the
		// unlocked read is re-checked once the locks are held.
		peek, err := s.persons.GetByID(txCtx, cmd.PersonID)
		if err != nil {
			if errors.Is(err, person.ErrNotFound) {
				return notFoundError("person", cmd.PersonID)
			}
			return err
		}

		targetDeptID := cmd.TargetDepartmentID
		if targetDeptID == uuid.Nil {
			targetDeptID = peek.DepartmentID()
		}
		if cmd.TargetRole == person.RoleDepartmentHead && targetDeptID == uuid.Nil {
			return validationError("target department is required when promoting to head")
		}

		adminOnly := peek.Role() == person.RoleDepartmentHead || cmd.TargetRole == person.RoleDepartmentHead
		if err := authorizeHierarchy(txCtx, TransitionsAuthzObject, adminOnly); err != nil {
			return err
		}

		ws, err := loadWorkingSet(
			txCtx,
			s.persons,
			s.departments,
			[]uuid.UUID{peek.DepartmentID(), targetDeptID},
			[]uuid.UUID{cmd.PersonID, cmd.ExplicitManagerID},
		)
		if err != nil {
			return err
		}

		p, ok := ws.person(cmd.PersonID)
		if !ok {
			return notFoundError("person", cmd.PersonID)
		}
		if p.DepartmentID() != peek.DepartmentID() || p.Role() != peek.Role() {
			// Someone moved the person between our peek and the lock.
			return ErrTransactionConflict
		}

		kind, err := classifyTransition(p, cmd.TargetRole, targetDeptID)
		if err != nil {
			return err
		}

		oldRole, oldDeptID := p.Role(), p.DepartmentID()

		switch kind {
		case KindManagerUpdate:
			p, kind, err = applyManagerUpdate(ws, p, cmd.ExplicitManagerID)
		case KindPromoteToHead:
			p, err = applyPromoteToHead(ws, p, targetDeptID)
		case KindHeadToHead:
			p, err = applyHeadToHead(ws, p, targetDeptID)
		case KindDemoteHead:
			p, err = applyDemoteHead(ws, p, cmd.TargetRole, targetDeptID, cmd.ExplicitManagerID)
		case KindRoleSwap:
			p, err = applyRoleSwap(ws, p, cmd.TargetRole, targetDeptID, cmd.ExplicitManagerID)
		case KindLateralMove:
			p, err = applyLateralMove(ws, p, targetDeptID, cmd.ExplicitManagerID)
		}
		if err != nil {
			return err
		}

		if kind != KindNoop {
			if err := ws.validate(); err != nil {
				return err
			}
			if err := ws.flush(txCtx, s.persons, s.departments); err != nil {
				return err
			}
		}

		result = &TransitionResult{
			Kind:        kind,
			Person:      p,
			Affected:    withoutPerson(ws.dirtyPersonList(), p.ID()),
			Departments: ws.dirtyDepartmentList(),
		}
		if kind != KindNoop {
			event = &person.TransitionAppliedEvent{
				TenantID:        p.TenantID(),
				PersonID:        p.ID(),
				Kind:            string(kind),
				OldRole:         oldRole,
				NewRole:         p.Role(),
				OldDepartmentID: oldDeptID,
				NewDepartmentID: p.DepartmentID(),
				OccurredAt:      time.Now().UTC(),
			}
		}
		return nil
	})
	if err != nil {
		err = wrapStoreError(err)
		metrics.ObserveTransition(kindLabel(result), "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.ObserveTransition(string(result.Kind), "ok", time.Since(start).Seconds())
	if event != nil && s.publisher != nil {
		s.publisher.Publish(*event)
	}
	return result, nil
}

func kindLabel(result *TransitionResult) string {
	if result == nil {
		return "unknown"
	}
	return string(result.Kind)
}

func withoutPerson(persons []person.Person, id uuid.UUID) []person.Person {
	out := make([]person.Person, 0, len(persons))
	for _, p := range persons {
		if p.ID() != id {
			out = append(out, p)
		}
	}
	return out
}
