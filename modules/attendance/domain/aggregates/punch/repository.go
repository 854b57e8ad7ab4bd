package punch

import (
	"context"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = gerrors.New("punch not found")

type FindParams struct {
	PersonID uuid.UUID
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p Punch) (Punch, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Punch, int64, error)
	// RetagDepartment moves a person's punches from one department tag
	// to another. Best-effort cleanup after a hierarchy move.
	RetagDepartment(ctx context.Context, personID, oldDepartmentID, newDepartmentID uuid.UUID) (int64, error)
}
