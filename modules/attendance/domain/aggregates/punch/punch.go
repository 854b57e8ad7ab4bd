package punch

import (
	"time"

	"github.com/google/uuid"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Punch is a single clock-in or clock-out record. The department is
// denormalized at punch time and re-tagged when the person later moves
// departments.
type Punch struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	personID     uuid.UUID
	departmentID uuid.UUID
	direction    Direction
	punchedAt    time.Time
	note         string
	createdAt    time.Time
}

func New(tenantID, personID, departmentID uuid.UUID, direction Direction, punchedAt time.Time, note string) Punch {
	return Punch{
		id:           uuid.New(),
		tenantID:     tenantID,
		personID:     personID,
		departmentID: departmentID,
		direction:    direction,
		punchedAt:    punchedAt,
		note:         note,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	personID uuid.UUID,
	departmentID uuid.UUID,
	direction Direction,
	punchedAt time.Time,
	note string,
	createdAt time.Time,
) Punch {
	return Punch{
		id:           id,
		tenantID:     tenantID,
		personID:     personID,
		departmentID: departmentID,
		direction:    direction,
		punchedAt:    punchedAt,
		note:         note,
		createdAt:    createdAt,
	}
}

func (p Punch) ID() uuid.UUID           { return p.id }
func (p Punch) TenantID() uuid.UUID     { return p.tenantID }
func (p Punch) PersonID() uuid.UUID     { return p.personID }
func (p Punch) DepartmentID() uuid.UUID { return p.departmentID }
func (p Punch) Direction() Direction    { return p.direction }
func (p Punch) PunchedAt() time.Time    { return p.punchedAt }
func (p Punch) Note() string            { return p.note }
func (p Punch) CreatedAt() time.Time    { return p.createdAt }
