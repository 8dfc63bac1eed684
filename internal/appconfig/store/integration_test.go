//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ett/internal/appconfig/models"
	"ett/internal/appconfig/store"
	"ett/pkg/platform/sentinel"
	"ett/pkg/testutil/containers"
)

type AppConfigIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redis    *containers.RedisContainer
	store    *store.PostgresStore
	cache    *store.RedisCache
}

func TestAppConfigIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AppConfigIntegrationSuite))
}

func (s *AppConfigIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.cache = store.NewRedisCache(s.store, s.redis.Client, time.Minute)
}

func (s *AppConfigIntegrationSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "app_configs"))
	s.Require().NoError(s.redis.FlushAll(ctx))
}

func (s *AppConfigIntegrationSuite) upsert(name models.ConfigName, seconds int64) {
	cfg, err := models.NewAppConfig(name, seconds, "")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Upsert(context.Background(), cfg))
}

func (s *AppConfigIntegrationSuite) TestUpsertReplacesValue() {
	ctx := context.Background()
	s.upsert(models.ConfigConsentExpiration, 86400)
	s.upsert(models.ConfigConsentExpiration, 2*86400)

	cfg, err := s.store.GetAppConfig(ctx, models.ConfigConsentExpiration)
	s.Require().NoError(err)
	s.Equal(float64(2), cfg.GetDuration(models.Day))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *AppConfigIntegrationSuite) TestNegativeValueRejectedByTable() {
	err := s.store.Upsert(context.Background(), &models.AppConfig{Name: models.ConfigStaleAdminVacancy, Seconds: -1})
	s.Error(err)
}

func (s *AppConfigIntegrationSuite) TestCacheServesStaleUntilInvalidated() {
	ctx := context.Background()
	s.upsert(models.ConfigStaleAdminVacancy, 30*86400)

	cfg, err := s.cache.GetAppConfig(ctx, models.ConfigStaleAdminVacancy)
	s.Require().NoError(err)
	s.Equal(int64(30*86400), cfg.Seconds)

	s.upsert(models.ConfigStaleAdminVacancy, 60*86400)
	cfg, err = s.cache.GetAppConfig(ctx, models.ConfigStaleAdminVacancy)
	s.Require().NoError(err)
	s.Equal(int64(30*86400), cfg.Seconds)

	s.Require().NoError(s.cache.Invalidate(ctx, models.ConfigStaleAdminVacancy))
	cfg, err = s.cache.GetAppConfig(ctx, models.ConfigStaleAdminVacancy)
	s.Require().NoError(err)
	s.Equal(int64(60*86400), cfg.Seconds)
}

func (s *AppConfigIntegrationSuite) TestCacheDoesNotHideMissingPolicy() {
	_, err := s.cache.GetAppConfig(context.Background(), models.ConfigDeleteDraftsAfter)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
