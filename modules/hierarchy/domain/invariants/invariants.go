// Package invariants checks the cross-reference consistency rules
// between persons and departments. The transition and exchange engines
// run Check over every record they are about to write; a non-empty
// result aborts the transaction.
package invariants

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/idset"
)

// Violation names the broken rule and the records involved.
type Violation struct {
	Rule    string
	Detail  string
	Persons []uuid.UUID
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// Describe flattens violations into a single human-readable line.
func Describe(violations []Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// Check validates every department in the working set against the
// persons in the working set. Both maps must cover the full population
// of the departments being checked; persons with a department outside
// the set are only checked for person-local rules.
func Check(
	persons map[uuid.UUID]person.Person,
	departments map[uuid.UUID]department.Department,
) []Violation {
	var out []Violation

	for _, d := range departments {
		out = append(out, checkHead(d, persons)...)
		out = append(out, checkManagers(d, persons)...)
		out = append(out, checkMembers(d, persons)...)
	}

	for _, p := range persons {
		out = append(out, checkPerson(p, persons, departments)...)
	}

	return out
}

// checkHead covers the head reference rule: a non-null headID points at
// a department_head assigned to this department.
func checkHead(d department.Department, persons map[uuid.UUID]person.Person) []Violation {
	headID := d.HeadID()
	if headID == uuid.Nil {
		return nil
	}
	head, ok := persons[headID]
	if !ok {
		return []Violation{{
			Rule:    "head-reference",
			Detail:  fmt.Sprintf("department %s head %s not loaded", d.ID(), headID),
			Persons: []uuid.UUID{headID},
		}}
	}
	var out []Violation
	if head.Role() != person.RoleDepartmentHead {
		out = append(out, Violation{
			Rule:    "head-reference",
			Detail:  fmt.Sprintf("department %s head %s has role %s", d.ID(), headID, head.Role()),
			Persons: []uuid.UUID{headID},
		})
	}
	if head.DepartmentID() != d.ID() {
		out = append(out, Violation{
			Rule:    "head-reference",
			Detail:  fmt.Sprintf("department %s head %s assigned to department %s", d.ID(), headID, head.DepartmentID()),
			Persons: []uuid.UUID{headID},
		})
	}
	return out
}

func checkManagers(d department.Department, persons map[uuid.UUID]person.Person) []Violation {
	var out []Violation
	for _, id := range d.ManagerIDs() {
		m, ok := persons[id]
		if !ok {
			out = append(out, Violation{
				Rule:    "manager-containment",
				Detail:  fmt.Sprintf("department %s lists manager %s not loaded", d.ID(), id),
				Persons: []uuid.UUID{id},
			})
			continue
		}
		if m.Role() != person.RoleManager || m.DepartmentID() != d.ID() {
			out = append(out, Violation{
				Rule:    "manager-containment",
				Detail:  fmt.Sprintf("department %s lists %s as manager but role=%s department=%s", d.ID(), id, m.Role(), m.DepartmentID()),
				Persons: []uuid.UUID{id},
			})
		}
	}
	return out
}

func checkMembers(d department.Department, persons map[uuid.UUID]person.Person) []Violation {
	var out []Violation
	for _, id := range d.MemberIDs() {
		m, ok := persons[id]
		if !ok {
			out = append(out, Violation{
				Rule:    "member-containment",
				Detail:  fmt.Sprintf("department %s lists member %s not loaded", d.ID(), id),
				Persons: []uuid.UUID{id},
			})
			continue
		}
		if m.Role() != person.RoleMember || m.DepartmentID() != d.ID() {
			out = append(out, Violation{
				Rule:    "member-containment",
				Detail:  fmt.Sprintf("department %s lists %s as member but role=%s department=%s", d.ID(), id, m.Role(), m.DepartmentID()),
				Persons: []uuid.UUID{id},
			})
		}
	}
	return out
}

func checkPerson(
	p person.Person,
	persons map[uuid.UUID]person.Person,
	departments map[uuid.UUID]department.Department,
) []Violation {
	var out []Violation

	switch p.Role() {
	case person.RoleDepartmentHead, person.RoleManager:
		if p.ManagerID() != uuid.Nil {
			out = append(out, Violation{
				Rule:    "no-manager-for-supervisors",
				Detail:  fmt.Sprintf("%s %s has managerId %s", p.Role(), p.ID(), p.ManagerID()),
				Persons: []uuid.UUID{p.ID()},
			})
		}
	}

	d, deptLoaded := departments[p.DepartmentID()]

	switch p.Role() {
	case person.RoleDepartmentHead:
		if !deptLoaded {
			break
		}
		if !idset.Equal(p.ManagedManagerIDs(), d.ManagerIDs()) {
			out = append(out, Violation{
				Rule:    "managed-set-mirror",
				Detail:  fmt.Sprintf("head %s managedManagerIds diverge from department %s managerIds", p.ID(), d.ID()),
				Persons: []uuid.UUID{p.ID()},
			})
		}
		if !idset.Equal(p.ManagedMemberIDs(), d.MemberIDs()) {
			out = append(out, Violation{
				Rule:    "managed-set-mirror",
				Detail:  fmt.Sprintf("head %s managedMemberIds diverge from department %s memberIds", p.ID(), d.ID()),
				Persons: []uuid.UUID{p.ID()},
			})
		}
	case person.RoleManager:
		if deptLoaded && !p.IsZero() {
			if !d.HasManager(p.ID()) {
				out = append(out, Violation{
					Rule:    "manager-containment",
					Detail:  fmt.Sprintf("manager %s missing from department %s managerIds", p.ID(), d.ID()),
					Persons: []uuid.UUID{p.ID()},
				})
			}
			for _, id := range p.ManagedMemberIDs() {
				if !d.HasMember(id) {
					out = append(out, Violation{
						Rule:    "managed-set-subset",
						Detail:  fmt.Sprintf("manager %s tracks member %s outside department %s", p.ID(), id, d.ID()),
						Persons: []uuid.UUID{p.ID(), id},
					})
				}
			}
		}
		if len(p.ManagedManagerIDs()) > 0 {
			out = append(out, Violation{
				Rule:    "managed-set-role",
				Detail:  fmt.Sprintf("manager %s has a managedManagerIds set", p.ID()),
				Persons: []uuid.UUID{p.ID()},
			})
		}
	case person.RoleMember:
		if deptLoaded && !d.HasMember(p.ID()) {
			out = append(out, Violation{
				Rule:    "member-containment",
				Detail:  fmt.Sprintf("member %s missing from department %s memberIds", p.ID(), d.ID()),
				Persons: []uuid.UUID{p.ID()},
			})
		}
		if len(p.ManagedManagerIDs()) > 0 || len(p.ManagedMemberIDs()) > 0 {
			out = append(out, Violation{
				Rule:    "managed-set-role",
				Detail:  fmt.Sprintf("member %s has managed sets", p.ID()),
				Persons: []uuid.UUID{p.ID()},
			})
		}
		if mgrID := p.ManagerID(); mgrID != uuid.Nil {
			mgr, ok := persons[mgrID]
			if !ok || mgr.Role() != person.RoleManager || mgr.DepartmentID() != p.DepartmentID() {
				out = append(out, Violation{
					Rule:    "member-manager-link",
					Detail:  fmt.Sprintf("member %s managerId %s is not a manager in the same department", p.ID(), mgrID),
					Persons: []uuid.UUID{p.ID(), mgrID},
				})
			}
		}
	}

	return out
}
