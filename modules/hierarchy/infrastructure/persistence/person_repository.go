package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/pkg/composables"
)

const personColumns = `
	id, tenant_id, display_name, role, department_id, manager_id,
	managed_manager_ids, managed_member_ids, created_at, updated_at`

type PgPersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PgPersonRepository{}
}

func (r *PgPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return r.getByID(ctx, id, false)
}

func (r *PgPersonRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return r.getByID(ctx, id, true)
}

func (r *PgPersonRepository) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (person.Person, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return person.Person{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}

	query := `SELECT` + personColumns + `
		FROM hierarchy_persons
		WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	row := tx.QueryRow(ctx, query, pgTenantID, pgUUIDFromUUID(id))
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return person.Person{}, person.ErrNotFound
		}
		return person.Person{}, err
	}
	return p, nil
}

func (r *PgPersonRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]person.Person, error) {
	return r.listByDepartment(ctx, departmentID, false)
}

func (r *PgPersonRepository) ListByDepartmentForUpdate(ctx context.Context, departmentID uuid.UUID) ([]person.Person, error) {
	return r.listByDepartment(ctx, departmentID, true)
}

func (r *PgPersonRepository) listByDepartment(ctx context.Context, departmentID uuid.UUID, forUpdate bool) ([]person.Person, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	// Stable ordering keeps row lock acquisition deterministic across
	// concurrent transactions.
	query := `SELECT` + personColumns + `
		FROM hierarchy_persons
		WHERE tenant_id = $1 AND department_id = $2
		ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := tx.Query(ctx, query, pgTenantID, pgUUIDFromUUID(departmentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []person.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgPersonRepository) GetAll(ctx context.Context) ([]person.Person, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT`+personColumns+`
		FROM hierarchy_persons
		WHERE tenant_id = $1
		ORDER BY display_name, id`, pgTenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []person.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgPersonRepository) Create(ctx context.Context, p person.Person) (person.Person, error) {
	tenantID, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return person.Person{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}

	if p.TenantID() != uuid.Nil && p.TenantID() != tenantID {
		return person.Person{}, fmt.Errorf("person tenant %s does not match context tenant %s", p.TenantID(), tenantID)
	}

	row := tx.QueryRow(ctx, `INSERT INTO hierarchy_persons (
			id, tenant_id, display_name, role, department_id, manager_id,
			managed_manager_ids, managed_member_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING`+personColumns,
		pgUUIDFromUUID(p.ID()),
		pgTenantID,
		p.DisplayName(),
		string(p.Role()),
		pgNullableUUID(p.DepartmentID()),
		pgNullableUUID(p.ManagerID()),
		pgUUIDArray(p.ManagedManagerIDs()),
		pgUUIDArray(p.ManagedMemberIDs()),
	)
	return scanPerson(row)
}

func (r *PgPersonRepository) Save(ctx context.Context, p person.Person) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE hierarchy_persons SET
			display_name = $3,
			role = $4,
			department_id = $5,
			manager_id = $6,
			managed_manager_ids = $7,
			managed_member_ids = $8,
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		pgTenantID,
		pgUUIDFromUUID(p.ID()),
		p.DisplayName(),
		string(p.Role()),
		pgNullableUUID(p.DepartmentID()),
		pgNullableUUID(p.ManagerID()),
		pgUUIDArray(p.ManagedManagerIDs()),
		pgUUIDArray(p.ManagedMemberIDs()),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

func scanPerson(row pgx.Row) (person.Person, error) {
	var (
		id, tenantID      pgtype.UUID
		displayName, role string
		departmentID      pgtype.UUID
		managerID         pgtype.UUID
		managedManagers   []pgtype.UUID
		managedMembers    []pgtype.UUID
		createdAt         pgtype.Timestamptz
		updatedAt         pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &tenantID, &displayName, &role, &departmentID, &managerID,
		&managedManagers, &managedMembers, &createdAt, &updatedAt,
	); err != nil {
		return person.Person{}, err
	}

	return person.Hydrate(
		uuidFromPg(id),
		uuidFromPg(tenantID),
		displayName,
		person.Role(role),
		uuidFromPg(departmentID),
		uuidFromPg(managerID),
		uuidsFromPgArray(managedManagers),
		uuidsFromPgArray(managedMembers),
		createdAt.Time,
		updatedAt.Time,
	), nil
}
