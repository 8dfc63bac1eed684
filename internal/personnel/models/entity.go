package models

import (
	"time"

	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
)

// Entity is a registered organization whose staffing is tracked.
type Entity struct {
	ID          id.EntityID `json:"entity_id"`
	Name        string      `json:"entity_name"`
	Description string      `json:"description,omitempty"`
	Active      id.YesNo    `json:"active"`
	CreatedAt   time.Time   `json:"create_timestamp"`
	UpdatedAt   *time.Time  `json:"update_timestamp,omitempty"`
}

func NewEntity(entityID id.EntityID, name, description string, now time.Time) (*Entity, error) {
	if entityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "entity ID cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "entity name cannot be empty")
	}
	return &Entity{
		ID:          entityID,
		Name:        name,
		Description: description,
		Active:      id.Yes,
		CreatedAt:   now,
	}, nil
}

func (e Entity) IsActive() bool {
	return e.Active == id.Yes
}
