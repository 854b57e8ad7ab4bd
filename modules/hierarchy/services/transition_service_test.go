package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
)

func TestApplyTransition_PromoteToHead_TransfersIncumbentSets(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)

	// Promote a member of department B to head of department A, which
	// already has a head.
	result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
		PersonID:           org.memB1,
		TargetRole:         person.RoleDepartmentHead,
		TargetDepartmentID: org.deptA,
	})
	require.NoError(t, err)
	require.Equal(t, KindPromoteToHead, result.Kind)

	promoted := f.person(t, org.memB1)
	require.Equal(t, person.RoleDepartmentHead, promoted.Role())
	require.Equal(t, org.deptA, promoted.DepartmentID())
	require.Equal(t, uuid.Nil, promoted.ManagerID())
	require.ElementsMatch(t, []uuid.UUID{org.mgrA}, promoted.ManagedManagerIDs())
	require.ElementsMatch(t, []uuid.UUID{org.memA1, org.memA2}, promoted.ManagedMemberIDs())

	// The vacated head is parked as a department-less member.
	vacated := f.person(t, org.headA)
	require.Equal(t, person.RoleMember, vacated.Role())
	require.Equal(t, uuid.Nil, vacated.DepartmentID())
	require.Equal(t, uuid.Nil, vacated.ManagerID())
	require.Empty(t, vacated.ManagedManagerIDs())
	require.Empty(t, vacated.ManagedMemberIDs())

	require.Equal(t, org.memB1, f.department(t, org.deptA).HeadID())

	// The old department no longer counts the promoted person.
	require.NotContains(t, f.department(t, org.deptB).MemberIDs(), org.memB1)
	require.NotContains(t, f.person(t, org.headB).ManagedMemberIDs(), org.memB1)

	// Managers never carry a managerId, before or after.
	require.Equal(t, uuid.Nil, f.person(t, org.mgrA).ManagerID())

	requireConsistent(t, f)
}

func TestApplyTransition_PromoteToHead_NoIncumbent(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)

	// Vacate department A's head seat, then promote one of its own
	// managers into it.
	f.setPerson(org.headA, person.RoleMember, uuid.Nil, uuid.Nil, nil, nil)
	f.setDepartment(org.deptA, uuid.Nil, []uuid.UUID{org.mgrA}, []uuid.UUID{org.memA1, org.memA2})

	result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
		PersonID:           org.mgrA,
		TargetRole:         person.RoleDepartmentHead,
		TargetDepartmentID: org.deptA,
	})
	require.NoError(t, err)
	require.Equal(t, KindPromoteToHead, result.Kind)

	promoted := f.person(t, org.mgrA)
	require.Equal(t, person.RoleDepartmentHead, promoted.Role())
	require.Empty(t, promoted.ManagedManagerIDs())
	require.ElementsMatch(t, []uuid.UUID{org.memA1, org.memA2}, promoted.ManagedMemberIDs())

	// The promoted manager's former member lost its explicit manager.
	require.Equal(t, uuid.Nil, f.person(t, org.memA1).ManagerID())
	require.NotContains(t, f.department(t, org.deptA).ManagerIDs(), org.mgrA)

	requireConsistent(t, f)
}

func TestApplyTransition_HeadToHead(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)

	result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
		PersonID:           org.headB,
		TargetRole:         person.RoleDepartmentHead,
		TargetDepartmentID: org.deptA,
	})
	require.NoError(t, err)
	require.Equal(t, KindHeadToHead, result.Kind)

	moved := f.person(t, org.headB)
	require.Equal(t, org.deptA, moved.DepartmentID())
	require.ElementsMatch(t, []uuid.UUID{org.mgrA}, moved.ManagedManagerIDs())
	require.ElementsMatch(t, []uuid.UUID{org.memA1, org.memA2}, moved.ManagedMemberIDs())

	require.Equal(t, uuid.Nil, f.department(t, org.deptB).HeadID())
	require.Equal(t, org.headB, f.department(t, org.deptA).HeadID())

	vacated := f.person(t, org.headA)
	require.Equal(t, person.RoleMember, vacated.Role())
	require.Equal(t, uuid.Nil, vacated.DepartmentID())

	requireConsistent(t, f)
}

func TestApplyTransition_SameDepartmentHeadLock(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)
	before, beforeDepts := f.st.snapshot()

	cases := []TransitionCommand{
		// Head re-becoming head of their own department.
		{PersonID: org.headA, TargetRole: person.RoleDepartmentHead, TargetDepartmentID: org.deptA},
		// Head demoted within their own department.
		{PersonID: org.headA, TargetRole: person.RoleManager, TargetDepartmentID: org.deptA},
		{PersonID: org.headA, TargetRole: person.RoleMember, TargetDepartmentID: org.deptA},
		// Department omitted defaults to the current one.
		{PersonID: org.headA, TargetRole: person.RoleMember},
	}
	for _, cmd := range cases {
		_, err := f.transitions.ApplyTransition(context.Background(), cmd)
		require.ErrorIs(t, err, ErrSameDepartmentHead)
	}

	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}

func TestApplyTransition_DemoteHead(t *testing.T) {
	t.Run("to manager of another department", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:           org.headA,
			TargetRole:         person.RoleManager,
			TargetDepartmentID: org.deptB,
		})
		require.NoError(t, err)
		require.Equal(t, KindDemoteHead, result.Kind)

		demoted := f.person(t, org.headA)
		require.Equal(t, person.RoleManager, demoted.Role())
		require.Equal(t, org.deptB, demoted.DepartmentID())
		require.Equal(t, uuid.Nil, demoted.ManagerID())
		require.Empty(t, demoted.ManagedMemberIDs())

		require.Equal(t, uuid.Nil, f.department(t, org.deptA).HeadID())
		require.Contains(t, f.department(t, org.deptB).ManagerIDs(), org.headA)
		require.Contains(t, f.person(t, org.headB).ManagedManagerIDs(), org.headA)

		requireConsistent(t, f)
	})

	t.Run("to member with explicit manager", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		// Give department B a manager to attach to.
		mgrB := f.addPerson(person.RoleManager, org.deptB, uuid.Nil, nil, nil)
		f.setPerson(org.headB, person.RoleDepartmentHead, org.deptB, uuid.Nil, []uuid.UUID{mgrB}, []uuid.UUID{org.memB1})
		f.setDepartment(org.deptB, org.headB, []uuid.UUID{mgrB}, []uuid.UUID{org.memB1})

		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:           org.headA,
			TargetRole:         person.RoleMember,
			TargetDepartmentID: org.deptB,
			ExplicitManagerID:  mgrB,
		})
		require.NoError(t, err)

		demoted := f.person(t, org.headA)
		require.Equal(t, person.RoleMember, demoted.Role())
		require.Equal(t, mgrB, demoted.ManagerID())
		require.Contains(t, f.person(t, mgrB).ManagedMemberIDs(), org.headA)
		require.Contains(t, f.person(t, org.headB).ManagedMemberIDs(), org.headA)

		requireConsistent(t, f)
	})
}

func TestApplyTransition_RoleSwap(t *testing.T) {
	t.Run("member to manager", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:   org.memA1,
			TargetRole: person.RoleManager,
		})
		require.NoError(t, err)
		require.Equal(t, KindRoleSwap, result.Kind)

		promoted := f.person(t, org.memA1)
		require.Equal(t, person.RoleManager, promoted.Role())
		require.Equal(t, org.deptA, promoted.DepartmentID())
		require.Equal(t, uuid.Nil, promoted.ManagerID())

		d := f.department(t, org.deptA)
		require.Contains(t, d.ManagerIDs(), org.memA1)
		require.NotContains(t, d.MemberIDs(), org.memA1)
		require.Contains(t, f.person(t, org.headA).ManagedManagerIDs(), org.memA1)
		require.NotContains(t, f.person(t, org.mgrA).ManagedMemberIDs(), org.memA1)

		requireConsistent(t, f)
	})

	t.Run("manager to member releases supervised members", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:   org.mgrA,
			TargetRole: person.RoleMember,
		})
		require.NoError(t, err)
		require.Equal(t, KindRoleSwap, result.Kind)

		demoted := f.person(t, org.mgrA)
		require.Equal(t, person.RoleMember, demoted.Role())
		require.Empty(t, demoted.ManagedMemberIDs())
		require.Equal(t, uuid.Nil, demoted.ManagerID())

		// The member the manager used to supervise is released.
		require.Equal(t, uuid.Nil, f.person(t, org.memA1).ManagerID())

		d := f.department(t, org.deptA)
		require.Contains(t, d.MemberIDs(), org.mgrA)
		require.NotContains(t, d.ManagerIDs(), org.mgrA)

		requireConsistent(t, f)
	})
}

func TestApplyTransition_LateralMove(t *testing.T) {
	t.Run("member moves with explicit manager", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		mgrB := f.addPerson(person.RoleManager, org.deptB, uuid.Nil, nil, nil)
		f.setPerson(org.headB, person.RoleDepartmentHead, org.deptB, uuid.Nil, []uuid.UUID{mgrB}, []uuid.UUID{org.memB1})
		f.setDepartment(org.deptB, org.headB, []uuid.UUID{mgrB}, []uuid.UUID{org.memB1})

		result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:           org.memA1,
			TargetRole:         person.RoleMember,
			TargetDepartmentID: org.deptB,
			ExplicitManagerID:  mgrB,
		})
		require.NoError(t, err)
		require.Equal(t, KindLateralMove, result.Kind)

		moved := f.person(t, org.memA1)
		require.Equal(t, org.deptB, moved.DepartmentID())
		require.Equal(t, mgrB, moved.ManagerID())
		require.Contains(t, f.person(t, mgrB).ManagedMemberIDs(), org.memA1)
		require.Contains(t, f.person(t, org.headB).ManagedMemberIDs(), org.memA1)

		// Old department forgets the member entirely.
		require.NotContains(t, f.department(t, org.deptA).MemberIDs(), org.memA1)
		require.NotContains(t, f.person(t, org.headA).ManagedMemberIDs(), org.memA1)
		require.NotContains(t, f.person(t, org.mgrA).ManagedMemberIDs(), org.memA1)

		requireConsistent(t, f)
	})

	t.Run("target department must have a head", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		// Headless target department.
		f.setPerson(org.headB, person.RoleMember, uuid.Nil, uuid.Nil, nil, nil)
		f.setDepartment(org.deptB, uuid.Nil, nil, []uuid.UUID{org.memB1})

		before, beforeDepts := f.st.snapshot()
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:           org.memA1,
			TargetRole:         person.RoleMember,
			TargetDepartmentID: org.deptB,
		})
		require.ErrorIs(t, err, ErrMissingTargetHead)
		require.Equal(t, before, f.st.persons)
		require.Equal(t, beforeDepts, f.st.departments)
	})

	t.Run("manager lateral move releases members", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:           org.mgrA,
			TargetRole:         person.RoleManager,
			TargetDepartmentID: org.deptB,
		})
		require.NoError(t, err)
		require.Equal(t, KindLateralMove, result.Kind)

		moved := f.person(t, org.mgrA)
		require.Equal(t, org.deptB, moved.DepartmentID())
		require.Empty(t, moved.ManagedMemberIDs())
		require.Equal(t, uuid.Nil, f.person(t, org.memA1).ManagerID())
		require.Contains(t, f.department(t, org.deptB).ManagerIDs(), org.mgrA)
		require.Contains(t, f.person(t, org.headB).ManagedManagerIDs(), org.mgrA)

		requireConsistent(t, f)
	})
}

func TestApplyTransition_ManagerUpdate(t *testing.T) {
	t.Run("re-points a member to another manager", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		mgr2 := f.addPerson(person.RoleManager, org.deptA, uuid.Nil, nil, nil)
		f.setPerson(org.headA, person.RoleDepartmentHead, org.deptA, uuid.Nil,
			[]uuid.UUID{org.mgrA, mgr2}, []uuid.UUID{org.memA1, org.memA2})
		f.setDepartment(org.deptA, org.headA, []uuid.UUID{org.mgrA, mgr2}, []uuid.UUID{org.memA1, org.memA2})

		result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:          org.memA1,
			TargetRole:        person.RoleMember,
			ExplicitManagerID: mgr2,
		})
		require.NoError(t, err)
		require.Equal(t, KindManagerUpdate, result.Kind)

		require.Equal(t, mgr2, f.person(t, org.memA1).ManagerID())
		require.Contains(t, f.person(t, mgr2).ManagedMemberIDs(), org.memA1)
		require.NotContains(t, f.person(t, org.mgrA).ManagedMemberIDs(), org.memA1)

		requireConsistent(t, f)
	})

	t.Run("rejects a manager outside the department", func(t *testing.T) {
		f := newFixture(t)
		org := seedStandardOrg(f)

		mgrB := f.addPerson(person.RoleManager, org.deptB, uuid.Nil, nil, nil)
		f.setPerson(org.headB, person.RoleDepartmentHead, org.deptB, uuid.Nil, []uuid.UUID{mgrB}, []uuid.UUID{org.memB1})
		f.setDepartment(org.deptB, org.headB, []uuid.UUID{mgrB}, []uuid.UUID{org.memB1})

		before, beforeDepts := f.st.snapshot()
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:          org.memA1,
			TargetRole:        person.RoleMember,
			ExplicitManagerID: mgrB,
		})
		require.ErrorIs(t, err, ErrRoleMismatch)
		require.Equal(t, before, f.st.persons)
		require.Equal(t, beforeDepts, f.st.departments)
	})
}

func TestApplyTransition_IdempotentNoop(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)
	before, beforeDepts := f.st.snapshot()

	result, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
		PersonID:           org.memA2,
		TargetRole:         person.RoleMember,
		TargetDepartmentID: org.deptA,
	})
	require.NoError(t, err)
	require.Equal(t, KindNoop, result.Kind)
	require.Empty(t, result.Affected)
	require.Empty(t, result.Departments)
	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}

func TestApplyTransition_Atomicity(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)
	before, beforeDepts := f.st.snapshot()

	f.st.failSave = errInjected
	_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
		PersonID:           org.memB1,
		TargetRole:         person.RoleDepartmentHead,
		TargetDepartmentID: org.deptA,
	})
	require.ErrorIs(t, err, errInjected)

	require.Equal(t, before, f.st.persons)
	require.Equal(t, beforeDepts, f.st.departments)
}

func TestApplyTransition_RequestValidation(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)

	t.Run("unknown person", func(t *testing.T) {
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:   uuid.New(),
			TargetRole: person.RoleMember,
		})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-hierarchy target role", func(t *testing.T) {
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:   org.memA1,
			TargetRole: person.RoleAdmin,
		})
		require.ErrorIs(t, err, ErrRoleMismatch)
	})

	t.Run("non-hierarchy source role", func(t *testing.T) {
		adminID := f.addPerson(person.RoleAdmin, uuid.Nil, uuid.Nil, nil, nil)
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:   adminID,
			TargetRole: person.RoleMember,
		})
		require.ErrorIs(t, err, ErrRoleMismatch)
	})

	t.Run("head target needs a department", func(t *testing.T) {
		floatID := f.addPerson(person.RoleMember, uuid.Nil, uuid.Nil, nil, nil)
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:   floatID,
			TargetRole: person.RoleDepartmentHead,
		})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestApplyTransition_AdminGuard(t *testing.T) {
	f := newFixture(t)
	org := seedStandardOrg(f)

	// Restore the real guard for this test.
	authorizeHierarchyFn = defaultAuthorizeHierarchy

	t.Run("head transition without actor is forbidden", func(t *testing.T) {
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:           org.memB1,
			TargetRole:         person.RoleDepartmentHead,
			TargetDepartmentID: org.deptA,
		})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("head transition with admin actor passes", func(t *testing.T) {
		ctx := composables.WithActor(context.Background(), composables.Actor{ID: uuid.New(), Role: "admin"})
		_, err := f.transitions.ApplyTransition(ctx, TransitionCommand{
			PersonID:           org.memB1,
			TargetRole:         person.RoleDepartmentHead,
			TargetDepartmentID: org.deptA,
		})
		require.NoError(t, err)
		requireConsistent(t, f)
	})

	t.Run("member transition needs no admin", func(t *testing.T) {
		_, err := f.transitions.ApplyTransition(context.Background(), TransitionCommand{
			PersonID:          org.memA2,
			TargetRole:        person.RoleMember,
			ExplicitManagerID: org.mgrA,
		})
		require.NoError(t, err)
		requireConsistent(t, f)
	})
}
