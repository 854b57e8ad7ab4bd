package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
)

// twoDeptOrg seeds two fully populated departments: each with a head,
// one manager and two members, the first member of each explicitly
// managed.
type twoDeptOrg struct {
	deptA, deptB uuid.UUID
	headA, headB uuid.UUID
	mgrA, mgrB   uuid.UUID
	memA1, memA2 uuid.UUID
	memB1, memB2 uuid.UUID
}

func seedTwoDeptOrg(f *fixture) twoDeptOrg {
	var org twoDeptOrg
	org.deptA = uuid.New()
	org.deptB = uuid.New()

	org.headA = f.addPerson(person.RoleDepartmentHead, org.deptA, uuid.Nil, nil, nil)
	org.mgrA = f.addPerson(person.RoleManager, org.deptA, uuid.Nil, nil, nil)
	org.memA1 = f.addPerson(person.RoleMember, org.deptA, org.mgrA, nil, nil)
	org.memA2 = f.addPerson(person.RoleMember, org.deptA, uuid.Nil, nil, nil)

	org.headB = f.addPerson(person.RoleDepartmentHead, org.deptB, uuid.Nil, nil, nil)
	org.mgrB = f.addPerson(person.RoleManager, org.deptB, uuid.Nil, nil, nil)
	org.memB1 = f.addPerson(person.RoleMember, org.deptB, org.mgrB, nil, nil)
	org.memB2 = f.addPerson(person.RoleMember, org.deptB, uuid.Nil, nil, nil)

	f.setPerson(org.headA, person.RoleDepartmentHead, org.deptA, uuid.Nil,
		[]uuid.UUID{org.mgrA}, []uuid.UUID{org.memA1, org.memA2})
	f.setPerson(org.mgrA, person.RoleManager, org.deptA, uuid.Nil, nil, []uuid.UUID{org.memA1})
	f.setPerson(org.headB, person.RoleDepartmentHead, org.deptB, uuid.Nil,
		[]uuid.UUID{org.mgrB}, []uuid.UUID{org.memB1, org.memB2})
	f.setPerson(org.mgrB, person.RoleManager, org.deptB, uuid.Nil, nil, []uuid.UUID{org.memB1})

	f.setDepartment(org.deptA, org.headA, []uuid.UUID{org.mgrA}, []uuid.UUID{org.memA1, org.memA2})
	f.setDepartment(org.deptB, org.headB, []uuid.UUID{org.mgrB}, []uuid.UUID{org.memB1, org.memB2})
	return org
}

func TestExchangeHeads_SwapsPopulations(t *testing.T) {
	f := newFixture(t)
	org := seedTwoDeptOrg(f)

	result, err := f.exchanges.ExchangeHeads(context.Background(), org.headA, org.headB)
	require.NoError(t, err)

	a := f.person(t, org.headA)
	require.Equal(t, org.deptB, a.DepartmentID())
	require.Equal(t, uuid.Nil, a.ManagerID())
	require.ElementsMatch(t, []uuid.UUID{org.mgrB}, a.ManagedManagerIDs())
	require.ElementsMatch(t, []uuid.UUID{org.memB1, org.memB2}, a.ManagedMemberIDs())

	b := f.person(t, org.headB)
	require.Equal(t, org.deptA, b.DepartmentID())
	require.Equal(t, uuid.Nil, b.ManagerID())
	require.ElementsMatch(t, []uuid.UUID{org.mgrA}, b.ManagedManagerIDs())
	require.ElementsMatch(t, []uuid.UUID{org.memA1, org.memA2}, b.ManagedMemberIDs())

	require.Equal(t, org.headB, f.department(t, org.deptA).HeadID())
	require.Equal(t, org.headA, f.department(t, org.deptB).HeadID())

	require.Len(t, result.Departments, 2)
	requireConsistent(t, f)
}

func TestExchangeHeads_Symmetry(t *testing.T) {
	f := newFixture(t)
	org := seedTwoDeptOrg(f)
	before, beforeDepts := f.st.snapshot()

	_, err := f.exchanges.ExchangeHeads(context.Background(), org.headA, org.headB)
	require.NoError(t, err)
	_, err = f.exchanges.ExchangeHeads(context.Background(), org.headB, org.headA)
	require.NoError(t, err)

	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}

func TestExchangeHeads_Preconditions(t *testing.T) {
	f := newFixture(t)
	org := seedTwoDeptOrg(f)
	before, beforeDepts := f.st.snapshot()

	t.Run("identical ids", func(t *testing.T) {
		_, err := f.exchanges.ExchangeHeads(context.Background(), org.headA, org.headA)
		require.ErrorIs(t, err, ErrDepartmentMismatch)
	})

	t.Run("unknown person", func(t *testing.T) {
		_, err := f.exchanges.ExchangeHeads(context.Background(), org.headA, uuid.New())
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("role mismatch", func(t *testing.T) {
		_, err := f.exchanges.ExchangeHeads(context.Background(), org.headA, org.mgrB)
		require.ErrorIs(t, err, ErrRoleMismatch)
	})

	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}

func TestExchangeManagers_RepointsMembers(t *testing.T) {
	f := newFixture(t)
	org := seedTwoDeptOrg(f)

	_, err := f.exchanges.ExchangeManagers(context.Background(), org.mgrA, org.mgrB)
	require.NoError(t, err)

	a := f.person(t, org.mgrA)
	require.Equal(t, org.deptB, a.DepartmentID())
	require.ElementsMatch(t, []uuid.UUID{org.memB1}, a.ManagedMemberIDs())

	b := f.person(t, org.mgrB)
	require.Equal(t, org.deptA, b.DepartmentID())
	require.ElementsMatch(t, []uuid.UUID{org.memA1}, b.ManagedMemberIDs())

	// Members stay in their department but report to the incoming
	// manager.
	require.Equal(t, org.deptA, f.person(t, org.memA1).DepartmentID())
	require.Equal(t, org.mgrB, f.person(t, org.memA1).ManagerID())
	require.Equal(t, org.mgrA, f.person(t, org.memB1).ManagerID())

	require.Contains(t, f.department(t, org.deptA).ManagerIDs(), org.mgrB)
	require.NotContains(t, f.department(t, org.deptA).ManagerIDs(), org.mgrA)
	require.Contains(t, f.person(t, org.headA).ManagedManagerIDs(), org.mgrB)
	require.NotContains(t, f.person(t, org.headA).ManagedManagerIDs(), org.mgrA)

	requireConsistent(t, f)
}

func TestExchangeManagers_Symmetry(t *testing.T) {
	f := newFixture(t)
	org := seedTwoDeptOrg(f)
	before, beforeDepts := f.st.snapshot()

	_, err := f.exchanges.ExchangeManagers(context.Background(), org.mgrA, org.mgrB)
	require.NoError(t, err)
	_, err = f.exchanges.ExchangeManagers(context.Background(), org.mgrB, org.mgrA)
	require.NoError(t, err)

	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}

func TestExchangeManagers_Preconditions(t *testing.T) {
	t.Run("both departments need heads", func(t *testing.T) {
		f := newFixture(t)
		org := seedTwoDeptOrg(f)

		f.setPerson(org.headB, person.RoleMember, uuid.Nil, uuid.Nil, nil, nil)
		f.setDepartment(org.deptB, uuid.Nil, []uuid.UUID{org.mgrB}, []uuid.UUID{org.memB1, org.memB2})
		before, beforeDepts := f.st.snapshot()

		_, err := f.exchanges.ExchangeManagers(context.Background(), org.mgrA, org.mgrB)
		require.ErrorIs(t, err, ErrMissingHead)
		require.Equal(t, before, f.st.persons)
		require.Equal(t, beforeDepts, f.st.departments)
	})

	t.Run("same department", func(t *testing.T) {
		f := newFixture(t)
		org := seedTwoDeptOrg(f)

		mgr2 := f.addPerson(person.RoleManager, org.deptA, uuid.Nil, nil, nil)
		f.setPerson(org.headA, person.RoleDepartmentHead, org.deptA, uuid.Nil,
			[]uuid.UUID{org.mgrA, mgr2}, []uuid.UUID{org.memA1, org.memA2})
		f.setDepartment(org.deptA, org.headA, []uuid.UUID{org.mgrA, mgr2}, []uuid.UUID{org.memA1, org.memA2})

		_, err := f.exchanges.ExchangeManagers(context.Background(), org.mgrA, mgr2)
		require.ErrorIs(t, err, ErrDepartmentMismatch)
	})
}

func TestExchangeHeads_Atomicity(t *testing.T) {
	f := newFixture(t)
	org := seedTwoDeptOrg(f)
	before, beforeDepts := f.st.snapshot()

	f.st.failSave = errInjected
	_, err := f.exchanges.ExchangeHeads(context.Background(), org.headA, org.headB)
	require.ErrorIs(t, err, errInjected)
	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}
