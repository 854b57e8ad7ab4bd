package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
)

// DepartmentDetail is the read-side projection of one department with
// its population resolved.
type DepartmentDetail struct {
	Department department.Department
	Head       person.Person
	Managers   []person.Person
	Members    []person.Person
}

type QueryService struct {
	persons     person.Repository
	departments department.Repository
}

func NewQueryService(persons person.Repository, departments department.Repository) *QueryService {
	return &QueryService{persons: persons, departments: departments}
}

func (s *QueryService) GetDepartment(ctx context.Context, id uuid.UUID) (*DepartmentDetail, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*DepartmentDetail, error) {
		d, err := s.departments.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, department.ErrNotFound) {
				return nil, notFoundError("department", id)
			}
			return nil, err
		}

		population, err := s.persons.ListByDepartment(txCtx, id)
		if err != nil {
			return nil, err
		}

		detail := &DepartmentDetail{Department: d}
		for _, p := range population {
			switch p.Role() {
			case person.RoleDepartmentHead:
				detail.Head = p
			case person.RoleManager:
				detail.Managers = append(detail.Managers, p)
			case person.RoleMember:
				detail.Members = append(detail.Members, p)
			}
		}
		return detail, nil
	})
}

func (s *QueryService) GetPerson(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (person.Person, error) {
		p, err := s.persons.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, person.ErrNotFound) {
				return person.Person{}, notFoundError("person", id)
			}
			return person.Person{}, err
		}
		return p, nil
	})
}

func (s *QueryService) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]department.Department, error) {
		return s.departments.GetAll(txCtx)
	})
}
