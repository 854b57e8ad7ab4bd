package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/department"
	"github.com/hivehr/hivehr/pkg/composables"
)

const departmentColumns = `
	id, tenant_id, name, head_id, manager_ids, member_ids, created_at, updated_at`

type PgDepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{}
}

func (r *PgDepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (department.Department, error) {
	return r.getByID(ctx, id, false)
}

func (r *PgDepartmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (department.Department, error) {
	return r.getByID(ctx, id, true)
}

func (r *PgDepartmentRepository) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (department.Department, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return department.Department{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}

	query := `SELECT` + departmentColumns + `
		FROM hierarchy_departments
		WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	row := tx.QueryRow(ctx, query, pgTenantID, pgUUIDFromUUID(id))
	d, err := scanDepartment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrNotFound
		}
		return department.Department{}, err
	}
	return d, nil
}

func (r *PgDepartmentRepository) GetAll(ctx context.Context) ([]department.Department, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT`+departmentColumns+`
		FROM hierarchy_departments
		WHERE tenant_id = $1
		ORDER BY name, id`, pgTenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []department.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PgDepartmentRepository) Create(ctx context.Context, d department.Department) (department.Department, error) {
	tenantID, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return department.Department{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}

	if d.TenantID() != uuid.Nil && d.TenantID() != tenantID {
		return department.Department{}, fmt.Errorf("department tenant %s does not match context tenant %s", d.TenantID(), tenantID)
	}

	row := tx.QueryRow(ctx, `INSERT INTO hierarchy_departments (
			id, tenant_id, name, head_id, manager_ids, member_ids
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING`+departmentColumns,
		pgUUIDFromUUID(d.ID()),
		pgTenantID,
		d.Name(),
		pgNullableUUID(d.HeadID()),
		pgUUIDArray(d.ManagerIDs()),
		pgUUIDArray(d.MemberIDs()),
	)
	return scanDepartment(row)
}

func (r *PgDepartmentRepository) Save(ctx context.Context, d department.Department) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE hierarchy_departments SET
			name = $3,
			head_id = $4,
			manager_ids = $5,
			member_ids = $6,
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		pgTenantID,
		pgUUIDFromUUID(d.ID()),
		d.Name(),
		pgNullableUUID(d.HeadID()),
		pgUUIDArray(d.ManagerIDs()),
		pgUUIDArray(d.MemberIDs()),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return department.ErrNotFound
	}
	return nil
}

func scanDepartment(row pgx.Row) (department.Department, error) {
	var (
		id, tenantID pgtype.UUID
		name         string
		headID       pgtype.UUID
		managerIDs   []pgtype.UUID
		memberIDs    []pgtype.UUID
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &tenantID, &name, &headID, &managerIDs, &memberIDs, &createdAt, &updatedAt,
	); err != nil {
		return department.Department{}, err
	}

	return department.Hydrate(
		uuidFromPg(id),
		uuidFromPg(tenantID),
		name,
		uuidFromPg(headID),
		uuidsFromPgArray(managerIDs),
		uuidsFromPgArray(memberIDs),
		createdAt.Time,
		updatedAt.Time,
	), nil
}
