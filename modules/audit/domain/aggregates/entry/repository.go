package entry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ActionTransition        = "hierarchy.transition"
	ActionHeadsExchanged    = "hierarchy.exchange.heads"
	ActionManagersExchanged = "hierarchy.exchange.managers"
)

type FindParams struct {
	Action   string
	PersonID uuid.UUID
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, e Entry) (Entry, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Entry, int64, error)
}
