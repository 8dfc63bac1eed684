package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "ett/pkg/domain-errors"
)

// EntityID identifies a registered entity (organization).
//
// Usage: construct via ParseEntityID at trust boundaries; direct conversion
// from uuid.UUID is reserved for stores and tests.
type EntityID uuid.UUID

// NewEntityID returns a fresh random entity ID.
func NewEntityID() EntityID {
	return EntityID(uuid.New())
}

// ParseEntityID parses a canonical UUID string into an EntityID.
//
// Errors: returns CodeInvalidInput when s is empty, malformed, or the nil UUID.
func ParseEntityID(s string) (EntityID, error) {
	if strings.TrimSpace(s) == "" {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "entity ID cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid entity ID format")
	}
	if u == uuid.Nil {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "entity ID cannot be nil")
	}
	return EntityID(u), nil
}

func (id EntityID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero UUID.
func (id EntityID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// NormalizeEmail lowercases and trims an email address. Emails key both
// role-holders and consenters, so every store lookup goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// YesNo mirrors the persisted Y/N activity flag on users, entities and consenters.
type YesNo string

const (
	Yes YesNo = "Y"
	No  YesNo = "N"
)

// ParseYesNo accepts Y/N (any case) and the long forms yes/no.
func ParseYesNo(s string) (YesNo, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES":
		return Yes, nil
	case "N", "NO":
		return No, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "active flag must be Y or N")
}

func (v YesNo) Bool() bool {
	return v == Yes
}
