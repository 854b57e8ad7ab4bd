package person

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = gerrors.New("person not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Person, error)
	// GetByIDForUpdate locks the row for the duration of the enclosing
	// transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (Person, error)
	// ListByDepartmentForUpdate locks and returns every person currently
	// assigned to the department.
	ListByDepartmentForUpdate(ctx context.Context, departmentID uuid.UUID) ([]Person, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]Person, error)
	GetAll(ctx context.Context) ([]Person, error)
	Create(ctx context.Context, p Person) (Person, error)
	Save(ctx context.Context, p Person) error
}
