package department

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/idset"
)

// Department mirrors the person-side hierarchy fields: headID points at
// the single department_head, managerIDs and memberIDs list everyone
// assigned here with the matching role.
type Department struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	name       string
	headID     uuid.UUID
	managerIDs []uuid.UUID
	memberIDs  []uuid.UUID
	createdAt  time.Time
	updatedAt  time.Time
}

func New(tenantID uuid.UUID, name string) Department {
	return Department{
		id:       uuid.New(),
		tenantID: tenantID,
		name:     strings.TrimSpace(name),
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	name string,
	headID uuid.UUID,
	managerIDs []uuid.UUID,
	memberIDs []uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Department {
	return Department{
		id:         id,
		tenantID:   tenantID,
		name:       strings.TrimSpace(name),
		headID:     headID,
		managerIDs: idset.Normalize(managerIDs),
		memberIDs:  idset.Normalize(memberIDs),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (d Department) ID() uuid.UUID           { return d.id }
func (d Department) TenantID() uuid.UUID     { return d.tenantID }
func (d Department) Name() string            { return d.name }
func (d Department) HeadID() uuid.UUID       { return d.headID }
func (d Department) ManagerIDs() []uuid.UUID { return idset.Clone(d.managerIDs) }
func (d Department) MemberIDs() []uuid.UUID  { return idset.Clone(d.memberIDs) }
func (d Department) CreatedAt() time.Time    { return d.createdAt }
func (d Department) UpdatedAt() time.Time    { return d.updatedAt }
func (d Department) IsZero() bool            { return d.id == uuid.Nil }

func (d Department) HasManager(id uuid.UUID) bool { return idset.Contains(d.managerIDs, id) }
func (d Department) HasMember(id uuid.UUID) bool  { return idset.Contains(d.memberIDs, id) }

func (d Department) WithHead(headID uuid.UUID) Department {
	d.headID = headID
	return d
}

func (d Department) AddManager(id uuid.UUID) Department {
	d.managerIDs = idset.Add(d.managerIDs, id)
	return d
}

func (d Department) RemoveManager(id uuid.UUID) Department {
	d.managerIDs = idset.Remove(d.managerIDs, id)
	return d
}

func (d Department) AddMember(id uuid.UUID) Department {
	d.memberIDs = idset.Add(d.memberIDs, id)
	return d
}

func (d Department) RemoveMember(id uuid.UUID) Department {
	d.memberIDs = idset.Remove(d.memberIDs, id)
	return d
}
