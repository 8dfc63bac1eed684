//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ett/internal/personnel/models"
	"ett/internal/personnel/store"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
	"ett/pkg/testutil/containers"
)

type PersonnelPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestPersonnelPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PersonnelPostgresSuite))
}

func (s *PersonnelPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PersonnelPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users", "entities"))
}

func (s *PersonnelPostgresSuite) roster(name string) (*models.Entity, []*models.User) {
	e, err := models.NewEntity(id.EntityID(uuid.New()), name, "", s.now)
	s.Require().NoError(err)
	admin, err := models.NewUser(e.ID, "Admin@"+name+".org", models.RoleAdmin, "Ada", s.now)
	s.Require().NoError(err)
	signer, err := models.NewUser(e.ID, "signer@"+name+".org", models.RoleAuthInd, "Sam", s.now)
	s.Require().NoError(err)
	s.Require().NoError(signer.Deactivate(s.now.Add(48 * time.Hour)))
	return e, []*models.User{admin, signer}
}

func (s *PersonnelPostgresSuite) TestRosterRoundTrip() {
	ctx := context.Background()
	e, users := s.roster("warhen")
	s.Require().NoError(s.store.SaveRoster(ctx, e, users))

	got, err := s.store.FindEntity(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal("warhen", got.Name)
	s.True(got.IsActive())

	listed, err := s.store.ListUsersByEntity(ctx, e.ID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)

	byEmail := map[string]*models.User{}
	for _, u := range listed {
		byEmail[u.Email] = u
	}
	s.Require().Contains(byEmail, "admin@warhen.org")
	s.True(byEmail["admin@warhen.org"].IsActive())
	s.Nil(byEmail["admin@warhen.org"].UpdatedAt)

	signer := byEmail["signer@warhen.org"]
	s.Require().NotNil(signer)
	s.False(signer.IsActive())
	s.True(signer.VacatedAt().Equal(s.now.Add(48 * time.Hour)))
}

func (s *PersonnelPostgresSuite) TestSaveUserReplacesExistingRole() {
	ctx := context.Background()
	e, users := s.roster("ostrom")
	s.Require().NoError(s.store.SaveRoster(ctx, e, users))

	admin := users[0]
	s.Require().NoError(admin.Deactivate(s.now.Add(time.Hour)))
	s.Require().NoError(s.store.SaveUser(ctx, admin))

	listed, err := s.store.ListUsersByEntity(ctx, e.ID)
	s.Require().NoError(err)
	s.Len(listed, 2)
	for _, u := range listed {
		s.False(u.IsActive(), u.Email)
	}
}

func (s *PersonnelPostgresSuite) TestSaveRosterIsAtomic() {
	ctx := context.Background()
	e, users := s.roster("atomic")
	users = append(users, &models.User{EntityID: e.ID, Email: "bad@atomic.org", Role: models.RoleAdmin, Active: "NO", CreatedAt: s.now})

	s.Require().Error(s.store.SaveRoster(ctx, e, users))

	_, err := s.store.FindEntity(ctx, e.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PersonnelPostgresSuite) TestListEntityIDsSkipsInactive() {
	ctx := context.Background()
	active, users := s.roster("active")
	s.Require().NoError(s.store.SaveRoster(ctx, active, users))

	dormant, err := models.NewEntity(id.EntityID(uuid.New()), "dormant", "", s.now)
	s.Require().NoError(err)
	dormant.Active = id.No
	s.Require().NoError(s.store.SaveEntity(ctx, dormant))

	ids, err := s.store.ListEntityIDs(ctx)
	s.Require().NoError(err)
	s.Equal([]id.EntityID{active.ID}, ids)
}
