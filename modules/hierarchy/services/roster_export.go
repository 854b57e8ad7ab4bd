package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
)

// RosterExportService renders the current org structure as an xlsx
// workbook: one summary sheet for departments, one roster sheet with a
// row per person.
type RosterExportService struct {
	persons     person.Repository
	departments department.Repository
}

func NewRosterExportService(persons person.Repository, departments department.Repository) *RosterExportService {
	return &RosterExportService{persons: persons, departments: departments}
}

func (s *RosterExportService) ExportRoster(ctx context.Context) ([]byte, error) {
	type snapshot struct {
		departments []department.Department
		persons     []person.Person
	}

	snap, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (snapshot, error) {
		depts, err := s.departments.GetAll(txCtx)
		if err != nil {
			return snapshot{}, err
		}
		people, err := s.persons.GetAll(txCtx)
		if err != nil {
			return snapshot{}, err
		}
		return snapshot{departments: depts, persons: people}, nil
	})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	names := make(map[uuid.UUID]string, len(snap.persons))
	for _, p := range snap.persons {
		names[p.ID()] = p.DisplayName()
	}
	deptNames := make(map[uuid.UUID]string, len(snap.departments))
	for _, d := range snap.departments {
		deptNames[d.ID()] = d.Name()
	}

	const deptSheet = "Departments"
	if err := f.SetSheetName(f.GetSheetName(0), deptSheet); err != nil {
		return nil, err
	}
	deptHeader := []any{"Department", "Head", "Managers", "Members"}
	if err := f.SetSheetRow(deptSheet, "A1", &deptHeader); err != nil {
		return nil, err
	}
	for i, d := range snap.departments {
		row := []any{
			d.Name(),
			names[d.HeadID()],
			len(d.ManagerIDs()),
			len(d.MemberIDs()),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(deptSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	const rosterSheet = "Roster"
	if _, err := f.NewSheet(rosterSheet); err != nil {
		return nil, err
	}
	rosterHeader := []any{"Name", "Role", "Department", "Manager"}
	if err := f.SetSheetRow(rosterSheet, "A1", &rosterHeader); err != nil {
		return nil, err
	}
	for i, p := range snap.persons {
		row := []any{
			p.DisplayName(),
			string(p.Role()),
			deptNames[p.DepartmentID()],
			names[p.ManagerID()],
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
