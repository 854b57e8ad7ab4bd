package services

import (
	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/idset"
)

// TransitionKind names the row of the transition table a request falls
// into. Each kind has its own apply function; classification happens
// once, up front, on the locked state.
type TransitionKind string

const (
	KindNoop          TransitionKind = "noop"
	KindManagerUpdate TransitionKind = "manager_update"
	KindPromoteToHead TransitionKind = "promote_to_head"
	KindHeadToHead    TransitionKind = "head_to_head"
	KindDemoteHead    TransitionKind = "demote_head"
	KindRoleSwap      TransitionKind = "role_swap"
	KindLateralMove   TransitionKind = "lateral_move"
)

// classifyTransition maps (oldRole, targetRole, department change) to a
// transition kind. Same-department head changes are rejected here, so
// no apply function ever sees one.
func classifyTransition(p person.Person, targetRole person.Role, targetDeptID uuid.UUID) (TransitionKind, error) {
	oldRole := p.Role()
	if !oldRole.IsHierarchical() {
		return "", roleMismatchError("person %s holds non-hierarchy role %s", p.ID(), oldRole)
	}

	sameDept := targetDeptID == p.DepartmentID()

	switch {
	case targetRole == person.RoleDepartmentHead && oldRole == person.RoleDepartmentHead:
		if sameDept {
			return "", ErrSameDepartmentHead
		}
		return KindHeadToHead, nil
	case targetRole == person.RoleDepartmentHead:
		return KindPromoteToHead, nil
	case oldRole == person.RoleDepartmentHead:
		if sameDept {
			return "", ErrSameDepartmentHead
		}
		return KindDemoteHead, nil
	case targetRole == oldRole && sameDept:
		return KindManagerUpdate, nil
	case targetRole == oldRole:
		return KindLateralMove, nil
	default:
		return KindRoleSwap, nil
	}
}

// detachMember unhooks a member from their department, its head and
// their explicit manager.
func detachMember(ws *workingSet, p person.Person) person.Person {
	if d, ok := ws.dept(p.DepartmentID()); ok {
		ws.putDept(d.RemoveMember(p.ID()))
		if h, ok := ws.person(d.HeadID()); ok {
			ws.putPerson(h.RemoveManagedMember(p.ID()))
		}
	}
	if m, ok := ws.person(p.ManagerID()); ok {
		ws.putPerson(m.RemoveManagedMember(p.ID()))
	}
	return p.WithManager(uuid.Nil)
}

// detachManager unhooks a manager from their department and head, and
// releases every member they supervised.
func detachManager(ws *workingSet, p person.Person) person.Person {
	if d, ok := ws.dept(p.DepartmentID()); ok {
		ws.putDept(d.RemoveManager(p.ID()))
		if h, ok := ws.person(d.HeadID()); ok {
			ws.putPerson(h.RemoveManagedManager(p.ID()))
		}
	}
	for _, id := range p.ManagedMemberIDs() {
		if m, ok := ws.person(id); ok {
			ws.putPerson(m.WithManager(uuid.Nil))
		}
	}
	return p.WithManagedMembers(nil).WithManager(uuid.Nil)
}

// detachHead vacates the head seat and drops the cached managed sets.
func detachHead(ws *workingSet, p person.Person) person.Person {
	if d, ok := ws.dept(p.DepartmentID()); ok {
		ws.putDept(d.WithHead(uuid.Nil))
	}
	return p.WithManagedManagers(nil).WithManagedMembers(nil)
}

func detachByRole(ws *workingSet, p person.Person) person.Person {
	switch p.Role() {
	case person.RoleManager:
		return detachManager(ws, p)
	case person.RoleMember:
		return detachMember(ws, p)
	case person.RoleDepartmentHead:
		return detachHead(ws, p)
	}
	return p
}

// attachManager adds p to the department's manager set and to the
// head's cache when a head exists.
func attachManager(ws *workingSet, p person.Person, deptID uuid.UUID) person.Person {
	p = p.WithRole(person.RoleManager).WithDepartment(deptID).WithManager(uuid.Nil)
	if d, ok := ws.dept(deptID); ok {
		ws.putDept(d.AddManager(p.ID()))
		if h, ok := ws.person(d.HeadID()); ok {
			ws.putPerson(h.AddManagedManager(p.ID()))
		}
	}
	return p
}

// attachMember adds p to the department's member set, the head's cache
// and, when an explicit manager was chosen, that manager's cache. The
// explicit manager must already be a manager of the target department.
func attachMember(ws *workingSet, p person.Person, deptID, explicitManagerID uuid.UUID) (person.Person, error) {
	p = p.WithRole(person.RoleMember).WithDepartment(deptID).WithManager(uuid.Nil)
	d, ok := ws.dept(deptID)
	if !ok {
		return p, notFoundError("department", deptID)
	}
	ws.putDept(d.AddMember(p.ID()))
	if h, ok := ws.person(d.HeadID()); ok {
		ws.putPerson(h.AddManagedMember(p.ID()))
	}

	if explicitManagerID != uuid.Nil {
		m, ok := ws.person(explicitManagerID)
		if !ok {
			return p, notFoundError("person", explicitManagerID)
		}
		if m.Role() != person.RoleManager || m.DepartmentID() != deptID {
			return p, roleMismatchError("person %s is not a manager of department %s", explicitManagerID, deptID)
		}
		ws.putPerson(m.AddManagedMember(p.ID()))
		p = p.WithManager(explicitManagerID)
	}
	return p, nil
}

// installAsHead seats p as the head of the target department. If the
// seat is taken, the incumbent is demoted to a department-less member
// and p inherits their managed sets (minus p); otherwise the sets are
// derived from the department's own membership.
func installAsHead(ws *workingSet, p person.Person, deptID uuid.UUID) (person.Person, error) {
	d, ok := ws.dept(deptID)
	if !ok {
		return p, notFoundError("department", deptID)
	}

	if vacatedID := d.HeadID(); vacatedID != uuid.Nil && vacatedID != p.ID() {
		vacated, ok := ws.person(vacatedID)
		if !ok {
			return p, notFoundError("person", vacatedID)
		}
		p = p.
			WithManagedManagers(idset.Remove(vacated.ManagedManagerIDs(), p.ID())).
			WithManagedMembers(idset.Remove(vacated.ManagedMemberIDs(), p.ID()))
		ws.putPerson(vacated.WithRole(person.RoleMember).ClearRelations())
	} else {
		p = p.
			WithManagedManagers(idset.Remove(d.ManagerIDs(), p.ID())).
			WithManagedMembers(idset.Remove(d.MemberIDs(), p.ID()))
	}

	// Re-read: the earlier detach may have rewritten the department.
	d, _ = ws.dept(deptID)
	ws.putDept(d.WithHead(p.ID()))

	p = p.WithRole(person.RoleDepartmentHead).WithDepartment(deptID).WithManager(uuid.Nil)
	return p, nil
}

func applyPromoteToHead(ws *workingSet, p person.Person, deptID uuid.UUID) (person.Person, error) {
	p = detachByRole(ws, p)
	p, err := installAsHead(ws, p, deptID)
	if err != nil {
		return p, err
	}
	ws.putPerson(p)
	return p, nil
}

func applyHeadToHead(ws *workingSet, p person.Person, deptID uuid.UUID) (person.Person, error) {
	p = detachHead(ws, p)
	p, err := installAsHead(ws, p, deptID)
	if err != nil {
		return p, err
	}
	ws.putPerson(p)
	return p, nil
}

func applyDemoteHead(ws *workingSet, p person.Person, targetRole person.Role, deptID, explicitManagerID uuid.UUID) (person.Person, error) {
	p = detachHead(ws, p)

	var err error
	if targetRole == person.RoleManager {
		p = attachManager(ws, p, deptID)
	} else {
		p, err = attachMember(ws, p, deptID, explicitManagerID)
		if err != nil {
			return p, err
		}
	}
	ws.putPerson(p)
	return p, nil
}

func applyRoleSwap(ws *workingSet, p person.Person, targetRole person.Role, deptID, explicitManagerID uuid.UUID) (person.Person, error) {
	p = detachByRole(ws, p)

	var err error
	if targetRole == person.RoleManager {
		p = attachManager(ws, p, deptID)
	} else {
		p, err = attachMember(ws, p, deptID, explicitManagerID)
		if err != nil {
			return p, err
		}
	}
	ws.putPerson(p)
	return p, nil
}

func applyLateralMove(ws *workingSet, p person.Person, deptID, explicitManagerID uuid.UUID) (person.Person, error) {
	target, ok := ws.dept(deptID)
	if !ok {
		return p, notFoundError("department", deptID)
	}
	if target.HeadID() == uuid.Nil {
		return p, ErrMissingTargetHead
	}

	role := p.Role()
	p = detachByRole(ws, p)

	var err error
	if role == person.RoleManager {
		p = attachManager(ws, p, deptID)
	} else {
		p, err = attachMember(ws, p, deptID, explicitManagerID)
		if err != nil {
			return p, err
		}
	}
	ws.putPerson(p)
	return p, nil
}

// applyManagerUpdate re-points a member to a different manager within
// the same department. A nil id means no change was requested; any
// other role receiving a manager id is a request error.
func applyManagerUpdate(ws *workingSet, p person.Person, explicitManagerID uuid.UUID) (person.Person, TransitionKind, error) {
	if explicitManagerID == uuid.Nil || explicitManagerID == p.ManagerID() {
		return p, KindNoop, nil
	}
	if p.Role() != person.RoleMember {
		return p, KindManagerUpdate, roleMismatchError("explicit manager only applies to members, person %s is a %s", p.ID(), p.Role())
	}

	if old, ok := ws.person(p.ManagerID()); ok {
		ws.putPerson(old.RemoveManagedMember(p.ID()))
	}

	m, ok := ws.person(explicitManagerID)
	if !ok {
		return p, KindManagerUpdate, notFoundError("person", explicitManagerID)
	}
	if m.Role() != person.RoleManager || m.DepartmentID() != p.DepartmentID() {
		return p, KindManagerUpdate, roleMismatchError("person %s is not a manager of department %s", explicitManagerID, p.DepartmentID())
	}
	ws.putPerson(m.AddManagedMember(p.ID()))

	p = p.WithManager(explicitManagerID)
	ws.putPerson(p)
	return p, KindManagerUpdate, nil
}
