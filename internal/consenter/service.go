package consenter

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ConfigProvider,Store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	configModel "ett/internal/appconfig/models"
	"ett/internal/consenter/models"
	"ett/internal/platform/metrics"
	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
	"ett/pkg/platform/sentinel"
	"ett/pkg/requestcontext"
)

var tracer = otel.Tracer("ett/internal/consenter")

// ConfigProvider resolves named duration policies.
type ConfigProvider interface {
	GetAppConfig(ctx context.Context, name configModel.ConfigName) (*configModel.AppConfig, error)
}

// Store reads consenter records.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.Consenter, error)
	List(ctx context.Context) ([]*models.Consenter, error)
}

// Service classifies consenters using the consent-expiration policy.
type Service struct {
	config  ConfigProvider
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(config ConfigProvider, store Store, opts ...Option) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("consenter store is required")
	}
	s := &Service{
		config: config,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Expiry returns the consent-expiration policy as a duration.
func (s *Service) Expiry(ctx context.Context) (time.Duration, error) {
	cfg, err := s.config.GetAppConfig(ctx, configModel.ConfigConsentExpiration)
	if err != nil {
		return 0, err
	}
	return cfg.Duration(), nil
}

// ConsentStatus classifies c at the time pinned in ctx. Provider errors are
// returned unchanged.
func (s *Service) ConsentStatus(ctx context.Context, c *models.Consenter) (models.Status, error) {
	v, err := s.Classify(ctx, c)
	if err != nil {
		return "", err
	}
	return v.Status, nil
}

// Classify is ConsentStatus with the deciding event attached. The policy is
// only looked up when the status depends on it.
func (s *Service) Classify(ctx context.Context, c *models.Consenter) (Verdict, error) {
	ctx, span := tracer.Start(ctx, "consenter.Classify")
	defer span.End()

	now := requestcontext.Now(ctx)
	var expiry time.Duration
	if c.HasActed() {
		var err error
		if expiry, err = s.Expiry(ctx); err != nil {
			span.RecordError(err)
			return Verdict{}, err
		}
	}

	v := Classify(c, expiry, now)
	span.SetAttributes(attribute.String("status", v.Status.String()))
	s.metrics.ObserveConsentVerdict(v.Status.String())
	s.logger.DebugContext(ctx, "consent status evaluated",
		"email", c.Email,
		"status", v.Status,
		"deciding_event", v.Kind,
		"deciding_timestamp", v.At,
	)
	return v, nil
}

// StatusByEmail loads the consenter and classifies it. An unknown email is
// CodeNotFound; other store failures are returned unchanged.
func (s *Service) StatusByEmail(ctx context.Context, email string) (models.Status, error) {
	email = id.NormalizeEmail(email)
	if email == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	c, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.Wrap(err, dErrors.CodeNotFound, "consenter not found")
		}
		return "", err
	}
	return s.ConsentStatus(ctx, c)
}

// List returns every consenter in the store.
func (s *Service) List(ctx context.Context) ([]*models.Consenter, error) {
	return s.store.List(ctx)
}
