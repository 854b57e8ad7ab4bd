package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hivehr/hivehr/modules/attendance/domain/aggregates/punch"
	"github.com/hivehr/hivehr/pkg/composables"
)

const punchColumns = `
	id, tenant_id, person_id, department_id, direction, punched_at, note, created_at`

type PgPunchRepository struct{}

func NewPunchRepository() punch.Repository {
	return &PgPunchRepository{}
}

func (r *PgPunchRepository) Create(ctx context.Context, p punch.Punch) (punch.Punch, error) {
	pgTenantID, err := tenantID(ctx)
	if err != nil {
		return punch.Punch{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return punch.Punch{}, err
	}

	row := tx.QueryRow(ctx, `INSERT INTO attendance_punches (
			id, tenant_id, person_id, department_id, direction, punched_at, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING`+punchColumns,
		pgUUID(p.ID()),
		pgTenantID,
		pgUUID(p.PersonID()),
		pgNullableUUID(p.DepartmentID()),
		string(p.Direction()),
		p.PunchedAt(),
		p.Note(),
	)
	return scanPunch(row)
}

func (r *PgPunchRepository) GetPaginated(ctx context.Context, params *punch.FindParams) ([]punch.Punch, int64, error) {
	pgTenantID, err := tenantID(ctx)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := ` WHERE tenant_id = $1`
	args := []interface{}{pgTenantID}
	if params.PersonID != uuid.Nil {
		args = append(args, pgUUID(params.PersonID))
		where += ` AND person_id = $2`
	}
	if !params.From.IsZero() {
		args = append(args, params.From)
		where += ` AND punched_at >= $` + itoa(len(args))
	}
	if !params.To.IsZero() {
		args = append(args, params.To)
		where += ` AND punched_at < $` + itoa(len(args))
	}

	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_punches`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + punchColumns + ` FROM attendance_punches` + where +
		` ORDER BY punched_at DESC, id`
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []punch.Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PgPunchRepository) RetagDepartment(ctx context.Context, personID, oldDepartmentID, newDepartmentID uuid.UUID) (int64, error) {
	pgTenantID, err := tenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `UPDATE attendance_punches SET
			department_id = $4
		WHERE tenant_id = $1 AND person_id = $2 AND department_id IS NOT DISTINCT FROM $3`,
		pgTenantID,
		pgUUID(personID),
		pgNullableUUID(oldDepartmentID),
		pgNullableUUID(newDepartmentID),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPunch(row pgx.Row) (punch.Punch, error) {
	var (
		id, tenantID, personID pgtype.UUID
		departmentID           pgtype.UUID
		direction              string
		punchedAt              pgtype.Timestamptz
		note                   string
		createdAt              pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &tenantID, &personID, &departmentID, &direction, &punchedAt, &note, &createdAt,
	); err != nil {
		return punch.Punch{}, err
	}

	return punch.Hydrate(
		fromPg(id),
		fromPg(tenantID),
		fromPg(personID),
		fromPg(departmentID),
		punch.Direction(direction),
		punchedAt.Time,
		note,
		createdAt.Time,
	), nil
}
