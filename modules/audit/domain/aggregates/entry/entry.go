package entry

import (
	"time"

	"github.com/google/uuid"
)

// Entry is an immutable audit record of a hierarchy change. Payload
// holds the event-specific fields as a flat string map so the log can
// outlive schema changes in the events themselves.
type Entry struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	action     string
	personIDs  []uuid.UUID
	payload    map[string]string
	occurredAt time.Time
	createdAt  time.Time
}

func New(tenantID uuid.UUID, action string, personIDs []uuid.UUID, payload map[string]string, occurredAt time.Time) Entry {
	return Entry{
		id:         uuid.New(),
		tenantID:   tenantID,
		action:     action,
		personIDs:  personIDs,
		payload:    payload,
		occurredAt: occurredAt,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	action string,
	personIDs []uuid.UUID,
	payload map[string]string,
	occurredAt time.Time,
	createdAt time.Time,
) Entry {
	return Entry{
		id:         id,
		tenantID:   tenantID,
		action:     action,
		personIDs:  personIDs,
		payload:    payload,
		occurredAt: occurredAt,
		createdAt:  createdAt,
	}
}

func (e Entry) ID() uuid.UUID       { return e.id }
func (e Entry) TenantID() uuid.UUID { return e.tenantID }
func (e Entry) Action() string      { return e.action }
func (e Entry) OccurredAt() time.Time { return e.occurredAt }
func (e Entry) CreatedAt() time.Time  { return e.createdAt }

func (e Entry) PersonIDs() []uuid.UUID {
	out := make([]uuid.UUID, len(e.personIDs))
	copy(out, e.personIDs)
	return out
}

func (e Entry) Payload() map[string]string {
	out := make(map[string]string, len(e.payload))
	for k, v := range e.payload {
		out[k] = v
	}
	return out
}
