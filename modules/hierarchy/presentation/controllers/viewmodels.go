package controllers

import (
	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
)

type personView struct {
	ID                uuid.UUID   `json:"id"`
	DisplayName       string      `json:"display_name"`
	Role              string      `json:"role"`
	DepartmentID      *uuid.UUID  `json:"department_id"`
	ManagerID         *uuid.UUID  `json:"manager_id"`
	ManagedManagerIDs []uuid.UUID `json:"managed_manager_ids"`
	ManagedMemberIDs  []uuid.UUID `json:"managed_member_ids"`
}

type departmentView struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	HeadID     *uuid.UUID  `json:"head_id"`
	ManagerIDs []uuid.UUID `json:"manager_ids"`
	MemberIDs  []uuid.UUID `json:"member_ids"`
}

func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func emptyIfNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func toPersonView(p person.Person) personView {
	return personView{
		ID:                p.ID(),
		DisplayName:       p.DisplayName(),
		Role:              string(p.Role()),
		DepartmentID:      nullableID(p.DepartmentID()),
		ManagerID:         nullableID(p.ManagerID()),
		ManagedManagerIDs: emptyIfNil(p.ManagedManagerIDs()),
		ManagedMemberIDs:  emptyIfNil(p.ManagedMemberIDs()),
	}
}

func toPersonViews(persons []person.Person) []personView {
	out := make([]personView, 0, len(persons))
	for _, p := range persons {
		out = append(out, toPersonView(p))
	}
	return out
}

func toDepartmentView(d department.Department) departmentView {
	return departmentView{
		ID:         d.ID(),
		Name:       d.Name(),
		HeadID:     nullableID(d.HeadID()),
		ManagerIDs: emptyIfNil(d.ManagerIDs()),
		MemberIDs:  emptyIfNil(d.MemberIDs()),
	}
}

func toDepartmentViews(departments []department.Department) []departmentView {
	out := make([]departmentView, 0, len(departments))
	for _, d := range departments {
		out = append(out, toDepartmentView(d))
	}
	return out
}
