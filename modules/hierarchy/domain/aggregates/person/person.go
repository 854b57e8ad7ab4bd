package person

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/idset"
)

type Role string

const (
	RoleDepartmentHead Role = "department_head"
	RoleManager        Role = "manager"
	RoleMember         Role = "member"

	// Roles outside the hierarchy. They carry no department relations
	// and are never a transition target.
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleHR         Role = "hr"
	RoleHRManager  Role = "hr_manager"
	RolePerson     Role = "person"
)

func (r Role) IsHierarchical() bool {
	return r == RoleDepartmentHead || r == RoleManager || r == RoleMember
}

func (r Role) Valid() bool {
	switch r {
	case RoleDepartmentHead, RoleManager, RoleMember,
		RoleAdmin, RoleSuperAdmin, RoleHR, RoleHRManager, RolePerson:
		return true
	}
	return false
}

// Person is the hierarchy view of a workforce member. managerID is set
// only for members with an explicitly chosen manager; the managed sets
// are the denormalized caches mirrored by Department.
type Person struct {
	id                uuid.UUID
	tenantID          uuid.UUID
	displayName       string
	role              Role
	departmentID      uuid.UUID
	managerID         uuid.UUID
	managedManagerIDs []uuid.UUID
	managedMemberIDs  []uuid.UUID
	createdAt         time.Time
	updatedAt         time.Time
}

func New(tenantID uuid.UUID, displayName string, role Role, departmentID uuid.UUID) Person {
	return Person{
		id:           uuid.New(),
		tenantID:     tenantID,
		displayName:  strings.TrimSpace(displayName),
		role:         role,
		departmentID: departmentID,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	displayName string,
	role Role,
	departmentID uuid.UUID,
	managerID uuid.UUID,
	managedManagerIDs []uuid.UUID,
	managedMemberIDs []uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Person {
	return Person{
		id:                id,
		tenantID:          tenantID,
		displayName:       strings.TrimSpace(displayName),
		role:              role,
		departmentID:      departmentID,
		managerID:         managerID,
		managedManagerIDs: idset.Normalize(managedManagerIDs),
		managedMemberIDs:  idset.Normalize(managedMemberIDs),
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (p Person) ID() uuid.UUID                  { return p.id }
func (p Person) TenantID() uuid.UUID            { return p.tenantID }
func (p Person) DisplayName() string            { return p.displayName }
func (p Person) Role() Role                     { return p.role }
func (p Person) DepartmentID() uuid.UUID        { return p.departmentID }
func (p Person) ManagerID() uuid.UUID           { return p.managerID }
func (p Person) ManagedManagerIDs() []uuid.UUID { return idset.Clone(p.managedManagerIDs) }
func (p Person) ManagedMemberIDs() []uuid.UUID  { return idset.Clone(p.managedMemberIDs) }
func (p Person) CreatedAt() time.Time           { return p.createdAt }
func (p Person) UpdatedAt() time.Time           { return p.updatedAt }
func (p Person) IsZero() bool                   { return p.id == uuid.Nil }

func (p Person) WithRole(role Role) Person {
	p.role = role
	return p
}

func (p Person) WithDepartment(departmentID uuid.UUID) Person {
	p.departmentID = departmentID
	return p
}

func (p Person) WithManager(managerID uuid.UUID) Person {
	p.managerID = managerID
	return p
}

func (p Person) WithManagedManagers(ids []uuid.UUID) Person {
	p.managedManagerIDs = idset.Normalize(ids)
	return p
}

func (p Person) WithManagedMembers(ids []uuid.UUID) Person {
	p.managedMemberIDs = idset.Normalize(ids)
	return p
}

func (p Person) AddManagedManager(id uuid.UUID) Person {
	p.managedManagerIDs = idset.Add(p.managedManagerIDs, id)
	return p
}

func (p Person) RemoveManagedManager(id uuid.UUID) Person {
	p.managedManagerIDs = idset.Remove(p.managedManagerIDs, id)
	return p
}

func (p Person) AddManagedMember(id uuid.UUID) Person {
	p.managedMemberIDs = idset.Add(p.managedMemberIDs, id)
	return p
}

func (p Person) RemoveManagedMember(id uuid.UUID) Person {
	p.managedMemberIDs = idset.Remove(p.managedMemberIDs, id)
	return p
}

// ClearRelations drops every hierarchy relation the person holds.
// Used when a head is pushed out of their department.
func (p Person) ClearRelations() Person {
	p.departmentID = uuid.Nil
	p.managerID = uuid.Nil
	p.managedManagerIDs = nil
	p.managedMemberIDs = nil
	return p
}
