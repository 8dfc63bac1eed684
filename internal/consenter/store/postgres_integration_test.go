//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ett/internal/consenter/models"
	"ett/internal/consenter/store"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
	"ett/pkg/testutil/containers"
)

type ConsenterPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestConsenterPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ConsenterPostgresSuite))
}

func (s *ConsenterPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ConsenterPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "consenters"))
}

func (s *ConsenterPostgresSuite) TestEventLogsRoundTrip() {
	ctx := context.Background()
	c, err := models.NewConsenter("Grace@Example.org", "Grace", s.now)
	s.Require().NoError(err)
	c.Consent(s.now.Add(-400 * 24 * time.Hour))
	c.Rescind(s.now.Add(-200 * 24 * time.Hour))
	c.Consent(s.now.Add(-100 * 24 * time.Hour))
	s.Require().NoError(c.Renew(s.now.Add(-10 * 24 * time.Hour)))
	s.Require().NoError(s.store.Save(ctx, c))

	got, err := s.store.FindByEmail(ctx, "grace@example.org")
	s.Require().NoError(err)
	s.Equal("Grace", got.Fullname)
	s.Require().Len(got.ConsentedTimestamps, 2)
	s.Require().Len(got.RescindedTimestamps, 1)
	s.Require().Len(got.RenewedTimestamps, 1)
	s.True(got.ConsentedTimestamps[1].Equal(s.now.Add(-100 * 24 * time.Hour)))
	s.True(got.RenewedTimestamps[0].Equal(s.now.Add(-10 * 24 * time.Hour)))
}

func (s *ConsenterPostgresSuite) TestSaveOverwritesLogs() {
	ctx := context.Background()
	c, err := models.NewConsenter("ada@example.org", "Ada", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, c))

	c.Consent(s.now)
	s.Require().NoError(s.store.Save(ctx, c))

	got, err := s.store.FindByEmail(ctx, "ada@example.org")
	s.Require().NoError(err)
	s.Len(got.ConsentedTimestamps, 1)
	s.Empty(got.RescindedTimestamps)
}

func (s *ConsenterPostgresSuite) TestFindUnknown() {
	_, err := s.store.FindByEmail(context.Background(), "nobody@example.org")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ConsenterPostgresSuite) TestListActiveOrderedByEmail() {
	ctx := context.Background()
	for _, email := range []string{"zed@example.org", "amy@example.org", "gone@example.org"} {
		c, err := models.NewConsenter(email, "", s.now)
		s.Require().NoError(err)
		if email == "gone@example.org" {
			c.Active = id.No
		}
		s.Require().NoError(s.store.Save(ctx, c))
	}

	listed, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal("amy@example.org", listed[0].Email)
	s.Equal("zed@example.org", listed[1].Email)
}
