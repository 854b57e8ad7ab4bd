package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/idset"
	"github.com/hivehr/hivehr/pkg/composables"
	"github.com/hivehr/hivehr/pkg/eventbus"
	"github.com/hivehr/hivehr/pkg/metrics"
)

// ExchangeResult mirrors TransitionResult for the paired swaps.
type ExchangeResult struct {
	PersonA     person.Person
	PersonB     person.Person
	Affected    []person.Person
	Departments []department.Department
}

type ExchangeService struct {
	persons     person.Repository
	departments department.Repository
	publisher   eventbus.EventBus
	atomic      composables.TxRunner
}

func NewExchangeService(
	persons person.Repository,
	departments department.Repository,
	publisher eventbus.EventBus,
) *ExchangeService {
	return &ExchangeService{
		persons:     persons,
		departments: departments,
		publisher:   publisher,
		atomic:      composables.InTenantTx,
	}
}

// ExchangeHeads swaps two department heads. Each head takes over the
// other's department and inherits that department's existing manager
// and member population as their managed sets.
func (s *ExchangeService) ExchangeHeads(ctx context.Context, headA, headB uuid.UUID) (*ExchangeResult, error) {
	var result *ExchangeResult
	var event *person.HeadsExchangedEvent

	err := s.atomic(ctx, func(txCtx context.Context) error {
		if err := authorizeHierarchy(txCtx, ExchangesAuthzObject, true); err != nil {
			return err
		}

		ws, a, b, err := s.loadPair(txCtx, headA, headB, person.RoleDepartmentHead)
		if err != nil {
			return err
		}

		deptA, _ := ws.dept(a.DepartmentID())
		deptB, _ := ws.dept(b.DepartmentID())

		ws.putDept(deptA.WithHead(b.ID()))
		ws.putDept(deptB.WithHead(a.ID()))

		a = a.
			WithDepartment(deptB.ID()).
			WithManagedManagers(idset.Remove(deptB.ManagerIDs(), a.ID())).
			WithManagedMembers(idset.Remove(deptB.MemberIDs(), a.ID()))
		b = b.
			WithDepartment(deptA.ID()).
			WithManagedManagers(idset.Remove(deptA.ManagerIDs(), b.ID())).
			WithManagedMembers(idset.Remove(deptA.MemberIDs(), b.ID()))
		ws.putPerson(a)
		ws.putPerson(b)

		if err := ws.validate(); err != nil {
			return err
		}
		if err := ws.flush(txCtx, s.persons, s.departments); err != nil {
			return err
		}

		result = s.exchangeResult(ws, a, b)
		event = &person.HeadsExchangedEvent{
			TenantID:    a.TenantID(),
			HeadA:       a.ID(),
			HeadB:       b.ID(),
			DepartmentA: deptA.ID(),
			DepartmentB: deptB.ID(),
			OccurredAt:  time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		metrics.ObserveExchange("heads", "error")
		return nil, wrapStoreError(err)
	}

	metrics.ObserveExchange("heads", "ok")
	if event != nil && s.publisher != nil {
		s.publisher.Publish(*event)
	}
	return result, nil
}

// ExchangeManagers swaps two managers between departments. Each
// manager's tracked members stay in their original department and are
// re-parented under the incoming manager.
func (s *ExchangeService) ExchangeManagers(ctx context.Context, managerA, managerB uuid.UUID) (*ExchangeResult, error) {
	var result *ExchangeResult
	var event *person.ManagersExchangedEvent

	err := s.atomic(ctx, func(txCtx context.Context) error {
		if err := authorizeHierarchy(txCtx, ExchangesAuthzObject, true); err != nil {
			return err
		}

		ws, a, b, err := s.loadPair(txCtx, managerA, managerB, person.RoleManager)
		if err != nil {
			return err
		}

		deptA, _ := ws.dept(a.DepartmentID())
		deptB, _ := ws.dept(b.DepartmentID())

		if !deptA.HasManager(a.ID()) || !deptB.HasManager(b.ID()) {
			return invariantError("manager not listed in own department's managerIds")
		}
		headA, okA := ws.person(deptA.HeadID())
		headB, okB := ws.person(deptB.HeadID())
		if !okA || !okB {
			return ErrMissingHead
		}

		membersOfA := a.ManagedMemberIDs()
		membersOfB := b.ManagedMemberIDs()

		ws.putDept(deptA.RemoveManager(a.ID()).AddManager(b.ID()))
		ws.putDept(deptB.RemoveManager(b.ID()).AddManager(a.ID()))
		ws.putPerson(headA.RemoveManagedManager(a.ID()).AddManagedManager(b.ID()))
		ws.putPerson(headB.RemoveManagedManager(b.ID()).AddManagedManager(a.ID()))

		// Members stay put; their manager reference flips to the
		// incoming manager of their department.
		for _, id := range membersOfA {
			if m, ok := ws.person(id); ok {
				ws.putPerson(m.WithManager(b.ID()))
			}
		}
		for _, id := range membersOfB {
			if m, ok := ws.person(id); ok {
				ws.putPerson(m.WithManager(a.ID()))
			}
		}

		a = a.WithDepartment(deptB.ID()).WithManagedMembers(membersOfB)
		b = b.WithDepartment(deptA.ID()).WithManagedMembers(membersOfA)
		ws.putPerson(a)
		ws.putPerson(b)

		if err := ws.validate(); err != nil {
			return err
		}
		if err := ws.flush(txCtx, s.persons, s.departments); err != nil {
			return err
		}

		result = s.exchangeResult(ws, a, b)
		event = &person.ManagersExchangedEvent{
			TenantID:    a.TenantID(),
			ManagerA:    a.ID(),
			ManagerB:    b.ID(),
			DepartmentA: deptA.ID(),
			DepartmentB: deptB.ID(),
			OccurredAt:  time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		metrics.ObserveExchange("managers", "error")
		return nil, wrapStoreError(err)
	}

	metrics.ObserveExchange("managers", "ok")
	if event != nil && s.publisher != nil {
		s.publisher.Publish(*event)
	}
	return result, nil
}

// loadPair locks both participants and their departments, and checks
// the shared exchange preconditions: distinct ids, the expected role on
// both sides, and distinct non-null departments.
func (s *ExchangeService) loadPair(
	ctx context.Context,
	idA, idB uuid.UUID,
	expectedRole person.Role,
) (*workingSet, person.Person, person.Person, error) {
	var none person.Person

	if idA == uuid.Nil || idB == uuid.Nil {
		return nil, none, none, validationError("both participant ids are required")
	}
	if idA == idB {
		return nil, none, none, ErrDepartmentMismatch
	}

	peekA, err := s.persons.GetByID(ctx, idA)
	if err != nil {
		return nil, none, none, mapPersonErr(err, idA)
	}
	peekB, err := s.persons.GetByID(ctx, idB)
	if err != nil {
		return nil, none, none, mapPersonErr(err, idB)
	}

	ws, err := loadWorkingSet(
		ctx,
		s.persons,
		s.departments,
		[]uuid.UUID{peekA.DepartmentID(), peekB.DepartmentID()},
		[]uuid.UUID{idA, idB},
	)
	if err != nil {
		return nil, none, none, err
	}

	a, okA := ws.person(idA)
	b, okB := ws.person(idB)
	if !okA {
		return nil, none, none, notFoundError("person", idA)
	}
	if !okB {
		return nil, none, none, notFoundError("person", idB)
	}
	if a.DepartmentID() != peekA.DepartmentID() || b.DepartmentID() != peekB.DepartmentID() {
		return nil, none, none, ErrTransactionConflict
	}

	if a.Role() != expectedRole || b.Role() != expectedRole {
		return nil, none, none, roleMismatchError("exchange requires both persons to be %s", expectedRole)
	}
	if a.DepartmentID() == uuid.Nil || b.DepartmentID() == uuid.Nil || a.DepartmentID() == b.DepartmentID() {
		return nil, none, none, ErrDepartmentMismatch
	}
	return ws, a, b, nil
}

func (s *ExchangeService) exchangeResult(ws *workingSet, a, b person.Person) *ExchangeResult {
	affected := withoutPerson(ws.dirtyPersonList(), a.ID())
	affected = withoutPerson(affected, b.ID())
	return &ExchangeResult{
		PersonA:     a,
		PersonB:     b,
		Affected:    affected,
		Departments: ws.dirtyDepartmentList(),
	}
}

func mapPersonErr(err error, id uuid.UUID) error {
	if errors.Is(err, person.ErrNotFound) {
		return notFoundError("person", id)
	}
	return err
}
