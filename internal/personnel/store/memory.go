package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"ett/internal/personnel/models"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
)

// InMemory keeps entities and users in maps. It backs tests and local runs
// without a database.
type InMemory struct {
	mu       sync.RWMutex
	entities map[id.EntityID]models.Entity
	users    map[id.EntityID][]models.User
}

func NewInMemory() *InMemory {
	return &InMemory{
		entities: make(map[id.EntityID]models.Entity),
		users:    make(map[id.EntityID][]models.User),
	}
}

func (s *InMemory) SaveEntity(_ context.Context, entity *models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = *entity
	return nil
}

// SaveUser inserts or replaces the user keyed by (entity, email, role).
func (s *InMemory) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[user.EntityID]; !ok {
		return fmt.Errorf("entity %s: %w", user.EntityID, sentinel.ErrNotFound)
	}
	users := s.users[user.EntityID]
	for i, u := range users {
		if u.Email == user.Email && u.Role == user.Role {
			users[i] = *user
			return nil
		}
	}
	s.users[user.EntityID] = append(users, *user)
	return nil
}

// SaveRoster writes an entity and its users. Nothing is stored if any user
// belongs to another entity.
func (s *InMemory) SaveRoster(_ context.Context, e *models.Entity, users []*models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.EntityID != e.ID {
			return fmt.Errorf("user %s belongs to entity %s: %w", u.Email, u.EntityID, sentinel.ErrInvalidState)
		}
	}
	s.entities[e.ID] = *e
	existing := s.users[e.ID]
	for _, u := range users {
		replaced := false
		for i, cur := range existing {
			if cur.Email == u.Email && cur.Role == u.Role {
				existing[i] = *u
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, *u)
		}
	}
	s.users[e.ID] = existing
	return nil
}

func (s *InMemory) FindEntity(_ context.Context, entityID id.EntityID) (*models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", entityID, sentinel.ErrNotFound)
	}
	return &e, nil
}

func (s *InMemory) ListUsersByEntity(_ context.Context, entityID id.EntityID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := s.users[entityID]
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, &u)
	}
	return out, nil
}

// ListEntityIDs returns every active entity, ordered for stable sweeps.
func (s *InMemory) ListEntityIDs(_ context.Context) ([]id.EntityID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]id.EntityID, 0, len(s.entities))
	for entityID, e := range s.entities {
		if e.IsActive() {
			ids = append(ids, entityID)
		}
	}
	slices.SortFunc(ids, func(a, b id.EntityID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids, nil
}
