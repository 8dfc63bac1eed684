package models

import (
	"time"

	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
)

// Role is a role a user holds within an entity.
type Role string

const (
	RoleSysAdmin         Role = "SYS_ADMIN"
	RoleAdmin            Role = "RE_ADMIN"
	RoleAuthInd          Role = "RE_AUTH_IND"
	RoleConsentingPerson Role = "CONSENTING_PERSON"
)

// minimumHeadcount is the number of active holders an entity must keep per
// role. Roles absent here carry no staffing requirement.
var minimumHeadcount = map[Role]int{
	RoleAdmin:   1,
	RoleAuthInd: 2,
}

var validRoles = map[Role]bool{
	RoleSysAdmin:         true,
	RoleAdmin:            true,
	RoleAuthInd:          true,
	RoleConsentingPerson: true,
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+s)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

// Minimum returns the required active headcount for r; zero when unstaffed.
func (r Role) Minimum() int {
	return minimumHeadcount[r]
}

func (r Role) String() string {
	return string(r)
}

// StaffedRoles lists the roles with a headcount requirement, in evaluation order.
func StaffedRoles() []Role {
	return []Role{RoleAdmin, RoleAuthInd}
}

// User is one role held by one person within an entity. A person holding two
// roles appears as two users.
//
// Invariants:
//   - Email is normalized and non-empty
//   - Role is valid
//   - UpdatedAt, when set, is the moment Active last changed
type User struct {
	EntityID  id.EntityID `json:"entity_id"`
	Email     string      `json:"email"`
	Role      Role        `json:"role"`
	Active    id.YesNo    `json:"active"`
	Fullname  string      `json:"fullname,omitempty"`
	CreatedAt time.Time   `json:"create_timestamp"`
	UpdatedAt *time.Time  `json:"update_timestamp,omitempty"`
}

func NewUser(entityID id.EntityID, email string, role Role, fullname string, now time.Time) (*User, error) {
	email = id.NormalizeEmail(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role: "+string(role))
	}
	return &User{
		EntityID:  entityID,
		Email:     email,
		Role:      role,
		Active:    id.Yes,
		Fullname:  fullname,
		CreatedAt: now,
	}, nil
}

func (u User) IsActive() bool {
	return u.Active == id.Yes
}

// VacatedAt is when the user stopped holding the role. For users never
// updated it falls back to creation time.
func (u User) VacatedAt() time.Time {
	if u.UpdatedAt != nil && !u.UpdatedAt.IsZero() {
		return *u.UpdatedAt
	}
	return u.CreatedAt
}

// Deactivate flips the user to inactive and stamps the change.
func (u *User) Deactivate(now time.Time) error {
	if !u.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "user is already inactive")
	}
	u.Active = id.No
	u.UpdatedAt = &now
	return nil
}
