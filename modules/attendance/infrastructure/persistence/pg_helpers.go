package persistence

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hivehr/hivehr/pkg/composables"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// pgNullableUUID maps uuid.Nil to SQL NULL.
func pgNullableUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func fromPg(v pgtype.UUID) uuid.UUID {
	if !v.Valid {
		return uuid.Nil
	}
	return uuid.UUID(v.Bytes)
}

func tenantID(ctx context.Context) (pgtype.UUID, error) {
	id, err := composables.UseTenantID(ctx)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgUUID(id), nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
