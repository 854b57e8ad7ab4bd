package services

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/invariants"
)

var testTenantID = uuid.MustParse("7b1f3d64-0000-4000-8000-000000000001")

// memStore backs the repositories with plain maps and provides the
// snapshot/rollback semantics of a database transaction, so the
// atomicity guarantees can be exercised without a live store.
type memStore struct {
	persons     map[uuid.UUID]person.Person
	departments map[uuid.UUID]department.Department

	failSave error
}

func newMemStore() *memStore {
	return &memStore{
		persons:     make(map[uuid.UUID]person.Person),
		departments: make(map[uuid.UUID]department.Department),
	}
}

func (st *memStore) Atomic(ctx context.Context, fn func(context.Context) error) error {
	personsBackup := make(map[uuid.UUID]person.Person, len(st.persons))
	for k, v := range st.persons {
		personsBackup[k] = v
	}
	departmentsBackup := make(map[uuid.UUID]department.Department, len(st.departments))
	for k, v := range st.departments {
		departmentsBackup[k] = v
	}

	if err := fn(ctx); err != nil {
		st.persons = personsBackup
		st.departments = departmentsBackup
		return err
	}
	return nil
}

func (st *memStore) snapshot() (map[uuid.UUID]person.Person, map[uuid.UUID]department.Department) {
	persons := make(map[uuid.UUID]person.Person, len(st.persons))
	for k, v := range st.persons {
		persons[k] = v
	}
	departments := make(map[uuid.UUID]department.Department, len(st.departments))
	for k, v := range st.departments {
		departments[k] = v
	}
	return persons, departments
}

type memPersonRepo struct {
	st *memStore
}

func (r *memPersonRepo) GetByID(_ context.Context, id uuid.UUID) (person.Person, error) {
	p, ok := r.st.persons[id]
	if !ok {
		return person.Person{}, person.ErrNotFound
	}
	return p, nil
}

func (r *memPersonRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return r.GetByID(ctx, id)
}

func (r *memPersonRepo) ListByDepartment(_ context.Context, departmentID uuid.UUID) ([]person.Person, error) {
	var out []person.Person
	for _, p := range r.st.persons {
		if p.DepartmentID() == departmentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ID(), out[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out, nil
}

func (r *memPersonRepo) ListByDepartmentForUpdate(ctx context.Context, departmentID uuid.UUID) ([]person.Person, error) {
	return r.ListByDepartment(ctx, departmentID)
}

func (r *memPersonRepo) GetAll(_ context.Context) ([]person.Person, error) {
	var out []person.Person
	for _, p := range r.st.persons {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPersonRepo) Create(_ context.Context, p person.Person) (person.Person, error) {
	r.st.persons[p.ID()] = p
	return p, nil
}

func (r *memPersonRepo) Save(_ context.Context, p person.Person) error {
	if r.st.failSave != nil {
		return r.st.failSave
	}
	if _, ok := r.st.persons[p.ID()]; !ok {
		return person.ErrNotFound
	}
	r.st.persons[p.ID()] = p
	return nil
}

type memDepartmentRepo struct {
	st *memStore
}

func (r *memDepartmentRepo) GetByID(_ context.Context, id uuid.UUID) (department.Department, error) {
	d, ok := r.st.departments[id]
	if !ok {
		return department.Department{}, department.ErrNotFound
	}
	return d, nil
}

func (r *memDepartmentRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (department.Department, error) {
	return r.GetByID(ctx, id)
}

func (r *memDepartmentRepo) GetAll(_ context.Context) ([]department.Department, error) {
	var out []department.Department
	for _, d := range r.st.departments {
		out = append(out, d)
	}
	return out, nil
}

func (r *memDepartmentRepo) Create(_ context.Context, d department.Department) (department.Department, error) {
	r.st.departments[d.ID()] = d
	return d, nil
}

func (r *memDepartmentRepo) Save(_ context.Context, d department.Department) error {
	if r.st.failSave != nil {
		return r.st.failSave
	}
	if _, ok := r.st.departments[d.ID()]; !ok {
		return department.ErrNotFound
	}
	r.st.departments[d.ID()] = d
	return nil
}

// fixture bundles the services wired onto a memStore with the authz
// guard opened up; individual tests close it again when they need to.
type fixture struct {
	st          *memStore
	transitions *TransitionService
	exchanges   *ExchangeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newMemStore()
	persons := &memPersonRepo{st: st}
	departments := &memDepartmentRepo{st: st}

	transitions := NewTransitionService(persons, departments, nil)
	transitions.atomic = st.Atomic
	exchanges := NewExchangeService(persons, departments, nil)
	exchanges.atomic = st.Atomic

	prevAuthz := authorizeHierarchyFn
	authorizeHierarchyFn = func(context.Context, string, bool) error { return nil }
	t.Cleanup(func() { authorizeHierarchyFn = prevAuthz })

	return &fixture{st: st, transitions: transitions, exchanges: exchanges}
}

func (f *fixture) addPerson(role person.Role, deptID, managerID uuid.UUID, managers, members []uuid.UUID) uuid.UUID {
	id := uuid.New()
	now := time.Now().UTC()
	f.st.persons[id] = person.Hydrate(id, testTenantID, "p-"+id.String()[:8], role, deptID, managerID, managers, members, now, now)
	return id
}

func (f *fixture) setPerson(id uuid.UUID, role person.Role, deptID, managerID uuid.UUID, managers, members []uuid.UUID) {
	now := time.Now().UTC()
	f.st.persons[id] = person.Hydrate(id, testTenantID, "p-"+id.String()[:8], role, deptID, managerID, managers, members, now, now)
}

func (f *fixture) addDepartment(headID uuid.UUID, managers, members []uuid.UUID) uuid.UUID {
	id := uuid.New()
	now := time.Now().UTC()
	f.st.departments[id] = department.Hydrate(id, testTenantID, "d-"+id.String()[:8], headID, managers, members, now, now)
	return id
}

func (f *fixture) setDepartment(id, headID uuid.UUID, managers, members []uuid.UUID) {
	now := time.Now().UTC()
	f.st.departments[id] = department.Hydrate(id, testTenantID, "d-"+id.String()[:8], headID, managers, members, now, now)
}

func (f *fixture) person(t *testing.T, id uuid.UUID) person.Person {
	t.Helper()
	p, ok := f.st.persons[id]
	require.True(t, ok, "person %s missing from store", id)
	return p
}

func (f *fixture) department(t *testing.T, id uuid.UUID) department.Department {
	t.Helper()
	d, ok := f.st.departments[id]
	require.True(t, ok, "department %s missing from store", id)
	return d
}

// requireConsistent asserts the invariant closure property over the
// entire store after an operation.
func requireConsistent(t *testing.T, f *fixture) {
	t.Helper()
	violations := invariants.Check(f.st.persons, f.st.departments)
	require.Empty(t, violations, "store violates invariants: %s", invariants.Describe(violations))
}

// standardOrg seeds one department with a head, one manager and two
// members (one explicitly managed), plus a second department with its
// own head and a free member.
type standardOrg struct {
	deptA, deptB           uuid.UUID
	headA, headB           uuid.UUID
	mgrA                   uuid.UUID
	memA1, memA2, memB1    uuid.UUID
}

func seedStandardOrg(f *fixture) standardOrg {
	var org standardOrg

	org.deptA = uuid.New()
	org.deptB = uuid.New()

	org.headA = f.addPerson(person.RoleDepartmentHead, org.deptA, uuid.Nil, nil, nil)
	org.mgrA = f.addPerson(person.RoleManager, org.deptA, uuid.Nil, nil, nil)
	org.memA1 = f.addPerson(person.RoleMember, org.deptA, org.mgrA, nil, nil)
	org.memA2 = f.addPerson(person.RoleMember, org.deptA, uuid.Nil, nil, nil)
	org.headB = f.addPerson(person.RoleDepartmentHead, org.deptB, uuid.Nil, nil, nil)
	org.memB1 = f.addPerson(person.RoleMember, org.deptB, uuid.Nil, nil, nil)

	f.setPerson(org.headA, person.RoleDepartmentHead, org.deptA, uuid.Nil,
		[]uuid.UUID{org.mgrA}, []uuid.UUID{org.memA1, org.memA2})
	f.setPerson(org.mgrA, person.RoleManager, org.deptA, uuid.Nil, nil, []uuid.UUID{org.memA1})
	f.setPerson(org.headB, person.RoleDepartmentHead, org.deptB, uuid.Nil, nil, []uuid.UUID{org.memB1})

	f.setDepartment(org.deptA, org.headA, []uuid.UUID{org.mgrA}, []uuid.UUID{org.memA1, org.memA2})
	f.setDepartment(org.deptB, org.headB, nil, []uuid.UUID{org.memB1})

	return org
}

var errInjected = gerrors.New("injected store failure")
