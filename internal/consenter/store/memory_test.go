package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ett/internal/consenter/models"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) save(email string) *models.Consenter {
	c, err := models.NewConsenter(email, "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, c))
	return c
}

func (s *InMemoryStoreSuite) TestFindByEmail() {
	s.Run("lookup is case insensitive", func() {
		s.save("pat@example.org")
		c, err := s.store.FindByEmail(s.ctx, "PAT@example.org")
		s.Require().NoError(err)
		s.Equal("pat@example.org", c.Email)
	})

	s.Run("unknown email is not found", func() {
		_, err := s.store.FindByEmail(s.ctx, "ghost@example.org")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestSaveCopiesEventLogs() {
	c := s.save("pat@example.org")
	c.Consent(s.now)

	stored, err := s.store.FindByEmail(s.ctx, c.Email)
	s.Require().NoError(err)
	s.Empty(stored.ConsentedTimestamps)

	stored.Rescind(s.now)
	again, err := s.store.FindByEmail(s.ctx, c.Email)
	s.Require().NoError(err)
	s.Empty(again.RescindedTimestamps)
}

func (s *InMemoryStoreSuite) TestList() {
	s.save("zed@example.org")
	s.save("amy@example.org")
	gone := s.save("gone@example.org")
	gone.Active = id.No
	s.Require().NoError(s.store.Save(s.ctx, gone))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("amy@example.org", list[0].Email)
	s.Equal("zed@example.org", list[1].Email)
}
