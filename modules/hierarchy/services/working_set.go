package services

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/invariants"
)

// workingSet is the locked slice of the org graph a single transition
// or exchange operates on: the touched departments with their full
// populations. Mutations go through put* so only dirty records are
// written back.
type workingSet struct {
	persons          map[uuid.UUID]person.Person
	departments      map[uuid.UUID]department.Department
	dirtyPersons     map[uuid.UUID]struct{}
	dirtyDepartments map[uuid.UUID]struct{}
}

// loadWorkingSet locks departments in sorted id order, then their
// populations, then any extra person ids not covered by a department.
// Sorted department locking keeps concurrent transitions that touch
// the same pair of departments from deadlocking each other.
func loadWorkingSet(
	ctx context.Context,
	persons person.Repository,
	departments department.Repository,
	deptIDs []uuid.UUID,
	personIDs []uuid.UUID,
) (*workingSet, error) {
	ws := &workingSet{
		persons:          make(map[uuid.UUID]person.Person),
		departments:      make(map[uuid.UUID]department.Department),
		dirtyPersons:     make(map[uuid.UUID]struct{}),
		dirtyDepartments: make(map[uuid.UUID]struct{}),
	}

	sorted := dedupSorted(deptIDs)
	for _, id := range sorted {
		d, err := departments.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, department.ErrNotFound) {
				return nil, notFoundError("department", id)
			}
			return nil, err
		}
		ws.departments[id] = d
	}

	for _, id := range sorted {
		population, err := persons.ListByDepartmentForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, p := range population {
			ws.persons[p.ID()] = p
		}
	}

	for _, id := range dedupSorted(personIDs) {
		if _, ok := ws.persons[id]; ok {
			continue
		}
		p, err := persons.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, person.ErrNotFound) {
				return nil, notFoundError("person", id)
			}
			return nil, err
		}
		ws.persons[id] = p
	}

	return ws, nil
}

func dedupSorted(ids []uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		seen := false
		for _, v := range out {
			if v == id {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (ws *workingSet) person(id uuid.UUID) (person.Person, bool) {
	p, ok := ws.persons[id]
	return p, ok
}

func (ws *workingSet) dept(id uuid.UUID) (department.Department, bool) {
	d, ok := ws.departments[id]
	return d, ok
}

func (ws *workingSet) putPerson(p person.Person) {
	ws.persons[p.ID()] = p
	ws.dirtyPersons[p.ID()] = struct{}{}
}

func (ws *workingSet) putDept(d department.Department) {
	ws.departments[d.ID()] = d
	ws.dirtyDepartments[d.ID()] = struct{}{}
}

// validate runs the full invariant check over the working set.
func (ws *workingSet) validate() error {
	violations := invariants.Check(ws.persons, ws.departments)
	if len(violations) == 0 {
		return nil
	}
	return invariantError(invariants.Describe(violations))
}

// flush writes every dirty record back through the repositories, in
// stable id order so writes hit the store deterministically.
func (ws *workingSet) flush(
	ctx context.Context,
	persons person.Repository,
	departments department.Repository,
) error {
	deptIDs := make([]uuid.UUID, 0, len(ws.dirtyDepartments))
	for id := range ws.dirtyDepartments {
		deptIDs = append(deptIDs, id)
	}
	for _, id := range dedupSorted(deptIDs) {
		if err := departments.Save(ctx, ws.departments[id]); err != nil {
			return err
		}
	}

	personIDs := make([]uuid.UUID, 0, len(ws.dirtyPersons))
	for id := range ws.dirtyPersons {
		personIDs = append(personIDs, id)
	}
	for _, id := range dedupSorted(personIDs) {
		if err := persons.Save(ctx, ws.persons[id]); err != nil {
			return err
		}
	}
	return nil
}

func (ws *workingSet) dirtyPersonList() []person.Person {
	ids := make([]uuid.UUID, 0, len(ws.dirtyPersons))
	for id := range ws.dirtyPersons {
		ids = append(ids, id)
	}
	out := make([]person.Person, 0, len(ids))
	for _, id := range dedupSorted(ids) {
		out = append(out, ws.persons[id])
	}
	return out
}

func (ws *workingSet) dirtyDepartmentList() []department.Department {
	ids := make([]uuid.UUID, 0, len(ws.dirtyDepartments))
	for id := range ws.dirtyDepartments {
		ids = append(ids, id)
	}
	out := make([]department.Department, 0, len(ids))
	for _, id := range dedupSorted(ids) {
		out = append(out, ws.departments[id])
	}
	return out
}
