package department

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = gerrors.New("department not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Department, error)
	// GetByIDForUpdate locks the row for the duration of the enclosing
	// transaction. Callers lock departments in sorted id order.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (Department, error)
	GetAll(ctx context.Context) ([]Department, error)
	Create(ctx context.Context, d Department) (Department, error)
	Save(ctx context.Context, d Department) error
}
