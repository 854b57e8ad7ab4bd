package punch

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateDTO struct {
	PersonID     string `json:"person_id" validate:"required,uuid"`
	DepartmentID string `json:"department_id" validate:"omitempty,uuid"`
	Direction    string `json:"direction" validate:"required,oneof=in out"`
	PunchedAt    string `json:"punched_at" validate:"omitempty"`
	Note         string `json:"note" validate:"max=500"`
}

func (d *CreateDTO) Ok() error {
	return validate.Struct(d)
}

// ToEntity parses the wire fields; a missing punched_at defaults to now.
func (d *CreateDTO) ToEntity(tenantID uuid.UUID) (Punch, error) {
	personID, err := uuid.Parse(d.PersonID)
	if err != nil {
		return Punch{}, err
	}
	departmentID := uuid.Nil
	if d.DepartmentID != "" {
		departmentID, err = uuid.Parse(d.DepartmentID)
		if err != nil {
			return Punch{}, err
		}
	}
	punchedAt := time.Now().UTC()
	if d.PunchedAt != "" {
		punchedAt, err = time.Parse(time.RFC3339, d.PunchedAt)
		if err != nil {
			return Punch{}, err
		}
	}
	return New(tenantID, personID, departmentID, Direction(d.Direction), punchedAt, d.Note), nil
}
