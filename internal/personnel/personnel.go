// Package personnel provides immutable roster snapshots: an entity plus every
// user record that belongs to it, loaded in one step.
package personnel

import (
	"context"
	"errors"
	"slices"

	"ett/internal/personnel/models"
	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
	"ett/pkg/platform/sentinel"
)

// Store is the read side the loader needs.
type Store interface {
	FindEntity(ctx context.Context, entityID id.EntityID) (*models.Entity, error)
	ListUsersByEntity(ctx context.Context, entityID id.EntityID) ([]*models.User, error)
}

// Personnel is a point-in-time roster of one entity. It never changes after
// construction; every accessor returns copies.
type Personnel struct {
	entity models.Entity
	users  []models.User
}

// New builds a snapshot from records the caller already holds.
func New(entity models.Entity, users []models.User) *Personnel {
	return &Personnel{entity: entity, users: slices.Clone(users)}
}

// Load reads the entity and its users from store and returns a populated
// snapshot. A missing entity is CodeNotFound; other store failures are
// returned unchanged.
func Load(ctx context.Context, store Store, entityID id.EntityID) (*Personnel, error) {
	entity, err := store.FindEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "entity not found")
		}
		return nil, err
	}
	users, err := store.ListUsersByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	snapshot := make([]models.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			snapshot = append(snapshot, *u)
		}
	}
	return &Personnel{entity: *entity, users: snapshot}, nil
}

func (p *Personnel) Entity() models.Entity {
	return p.entity
}

func (p *Personnel) Users() []models.User {
	return slices.Clone(p.users)
}

// UsersInRole returns the users holding role, active or not.
func (p *Personnel) UsersInRole(role models.Role) []models.User {
	var out []models.User
	for _, u := range p.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// ActiveCount is the number of active holders of role.
func (p *Personnel) ActiveCount(role models.Role) int {
	n := 0
	for _, u := range p.users {
		if u.Role == role && u.IsActive() {
			n++
		}
	}
	return n
}
