package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"ett/internal/consenter/models"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
)

// InMemory keeps consenters keyed by normalized email.
type InMemory struct {
	mu         sync.RWMutex
	consenters map[string]models.Consenter
}

func NewInMemory() *InMemory {
	return &InMemory{consenters: make(map[string]models.Consenter)}
}

// Save inserts or replaces the consenter. Event logs are copied so later
// appends by the caller do not leak into the store.
func (s *InMemory) Save(_ context.Context, c *models.Consenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consenters[id.NormalizeEmail(c.Email)] = clone(*c)
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Consenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consenters[id.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("consenter %s: %w", email, sentinel.ErrNotFound)
	}
	c = clone(c)
	return &c, nil
}

// List returns every active consenter ordered by email.
func (s *InMemory) List(_ context.Context) ([]*models.Consenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Consenter, 0, len(s.consenters))
	for _, c := range s.consenters {
		if !c.IsActive() {
			continue
		}
		c = clone(c)
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Consenter) int {
		return strings.Compare(a.Email, b.Email)
	})
	return out, nil
}

func clone(c models.Consenter) models.Consenter {
	c.ConsentedTimestamps = slices.Clone(c.ConsentedTimestamps)
	c.RescindedTimestamps = slices.Clone(c.RescindedTimestamps)
	c.RenewedTimestamps = slices.Clone(c.RenewedTimestamps)
	return c
}
