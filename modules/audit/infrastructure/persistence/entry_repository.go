package persistence

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hivehr/hivehr/modules/audit/domain/aggregates/entry"
	"github.com/hivehr/hivehr/pkg/composables"
)

const entryColumns = `
	id, tenant_id, action, person_ids, payload, occurred_at, created_at`

type PgEntryRepository struct{}

func NewEntryRepository() entry.Repository {
	return &PgEntryRepository{}
}

func (r *PgEntryRepository) Create(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	pgTenantID, err := tenantID(ctx)
	if err != nil {
		return entry.Entry{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return entry.Entry{}, err
	}

	payload, err := json.Marshal(e.Payload())
	if err != nil {
		return entry.Entry{}, err
	}

	row := tx.QueryRow(ctx, `INSERT INTO audit_entries (
			id, tenant_id, action, person_ids, payload, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING`+entryColumns,
		pgUUID(e.ID()),
		pgTenantID,
		e.Action(),
		pgUUIDArray(e.PersonIDs()),
		payload,
		e.OccurredAt(),
	)
	return scanEntry(row)
}

func (r *PgEntryRepository) GetPaginated(ctx context.Context, params *entry.FindParams) ([]entry.Entry, int64, error) {
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
	if params.Action != "" {
		args = append(args, params.Action)
		where += ` AND action = $` + strconv.Itoa(len(args))
	}
	if params.PersonID != uuid.Nil {
		args = append(args, pgUUID(params.PersonID))
		where += ` AND $` + strconv.Itoa(len(args)) + ` = ANY(person_ids)`
	}
	if !params.From.IsZero() {
		args = append(args, params.From)
		where += ` AND occurred_at >= $` + strconv.Itoa(len(args))
	}
	if !params.To.IsZero() {
		args = append(args, params.To)
		where += ` AND occurred_at < $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + entryColumns + ` FROM audit_entries` + where +
		` ORDER BY occurred_at DESC, id`
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func scanEntry(row pgx.Row) (entry.Entry, error) {
	var (
		id, tenantID pgtype.UUID
		action       string
		personIDs    []pgtype.UUID
		payload      []byte
		occurredAt   pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &tenantID, &action, &personIDs, &payload, &occurredAt, &createdAt,
	); err != nil {
		return entry.Entry{}, err
	}

	fields := map[string]string{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return entry.Entry{}, err
		}
	}

	return entry.Hydrate(
		fromPg(id),
		fromPg(tenantID),
		action,
		fromPgArray(personIDs),
		fields,
		occurredAt.Time,
		createdAt.Time,
	), nil
}
