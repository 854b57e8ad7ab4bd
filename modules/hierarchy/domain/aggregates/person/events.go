package person

import (
	"time"

	"github.com/google/uuid"
)

// TransitionAppliedEvent is published after a transition commits. The
// old and new department ids let downstream consumers re-tag records
// (tasks, meetings, attendance) that carry a department reference.
type TransitionAppliedEvent struct {
	TenantID        uuid.UUID
	PersonID        uuid.UUID
	Kind            string
	OldRole         Role
	NewRole         Role
	OldDepartmentID uuid.UUID
	NewDepartmentID uuid.UUID
	OccurredAt      time.Time
}

// HeadsExchangedEvent is published after two department heads swap.
type HeadsExchangedEvent struct {
	TenantID    uuid.UUID
	HeadA       uuid.UUID
	HeadB       uuid.UUID
	DepartmentA uuid.UUID
	DepartmentB uuid.UUID
	OccurredAt  time.Time
}

// ManagersExchangedEvent is published after two managers swap.
type ManagersExchangedEvent struct {
	TenantID    uuid.UUID
	ManagerA    uuid.UUID
	ManagerB    uuid.UUID
	DepartmentA uuid.UUID
	DepartmentB uuid.UUID
	OccurredAt  time.Time
}
