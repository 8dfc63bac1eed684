package vacancy

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ConfigProvider,PersonnelStore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	configModel "ett/internal/appconfig/models"
	"ett/internal/personnel"
	"ett/internal/personnel/models"
	"ett/internal/platform/metrics"
	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
	"ett/pkg/requestcontext"
)

var tracer = otel.Tracer("ett/internal/vacancy")

// ConfigProvider resolves named duration policies.
type ConfigProvider interface {
	GetAppConfig(ctx context.Context, name configModel.ConfigName) (*configModel.AppConfig, error)
}

// PersonnelStore is the roster source used by EvaluateEntity.
type PersonnelStore interface {
	FindEntity(ctx context.Context, entityID id.EntityID) (*models.Entity, error)
	ListUsersByEntity(ctx context.Context, entityID id.EntityID) ([]*models.User, error)
}

// EntityVerdict combines the headcount check with both role verdicts for one
// entity at one instant.
type EntityVerdict struct {
	EntityID     id.EntityID             `json:"entity_id"`
	EntityName   string                  `json:"entity_name"`
	Understaffed bool                    `json:"understaffed"`
	Roles        map[models.Role]*Result `json:"roles"`
	EvaluatedAt  time.Time               `json:"evaluated_at"`
}

// Breached reports whether any role is past its vacancy limit.
func (v *EntityVerdict) Breached() bool {
	for _, r := range v.Roles {
		if r.Breached {
			return true
		}
	}
	return false
}

// Service wires the pure classifiers to their collaborators: the policy
// provider and the roster store. It holds no per-call state.
type Service struct {
	config    ConfigProvider
	personnel PersonnelStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
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

func New(config ConfigProvider, store PersonnelStore, opts ...Option) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("personnel store is required")
	}
	s := &Service{
		config:    config,
		personnel: store,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// policyName maps a staffed role to its vacancy limit policy.
func policyName(role models.Role) (configModel.ConfigName, error) {
	switch role {
	case models.RoleAdmin:
		return configModel.ConfigStaleAdminVacancy, nil
	case models.RoleAuthInd:
		return configModel.ConfigStaleCoSignerVacancy, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "role has no vacancy policy: "+string(role))
}

// MaxVacancy looks up the vacancy limit for role. Provider errors are
// returned unchanged.
func (s *Service) MaxVacancy(ctx context.Context, role models.Role) (time.Duration, error) {
	name, err := policyName(role)
	if err != nil {
		return 0, err
	}
	cfg, err := s.config.GetAppConfig(ctx, name)
	if err != nil {
		return 0, err
	}
	return cfg.Duration(), nil
}

// IsUnderStaffed is the headcount check; it needs no collaborators.
func (s *Service) IsUnderStaffed(roster *personnel.Personnel) bool {
	return IsUnderStaffed(roster)
}

// ExceededRoleVacancyTimeLimit evaluates role against roster at the time
// pinned in ctx. When policy is nil the limit is looked up by role.
func (s *Service) ExceededRoleVacancyTimeLimit(ctx context.Context, role models.Role, roster *personnel.Personnel, policy *configModel.AppConfig) (*Result, error) {
	ctx, span := tracer.Start(ctx, "vacancy.ExceededRoleVacancyTimeLimit")
	defer span.End()
	span.SetAttributes(attribute.String("role", string(role)))

	if roster == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "roster is required")
	}

	now := requestcontext.Now(ctx)
	if role.Minimum() == 0 {
		return ExceededRoleVacancyTimeLimit(role, roster.Users(), 0, now), nil
	}

	var maxVacancy time.Duration
	if policy != nil {
		maxVacancy = policy.Duration()
	} else {
		var err error
		if maxVacancy, err = s.MaxVacancy(ctx, role); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	res := ExceededRoleVacancyTimeLimit(role, roster.Users(), maxVacancy, now)
	span.SetAttributes(
		attribute.Bool("breached", res.Breached),
		attribute.String("reason", string(res.Reason)),
	)
	s.metrics.ObserveVacancyVerdict(string(role), string(res.Reason))

	entity := roster.Entity()
	s.logger.DebugContext(ctx, "role vacancy evaluated",
		"entity_id", entity.ID,
		"role", role,
		"breached", res.Breached,
		"reason", res.Reason,
		"over_under", res.OverUnder,
		"report", res.Report,
	)
	return res, nil
}

// EvaluateEntity loads the entity's roster and evaluates every staffed role.
// Store and provider errors are returned unchanged.
func (s *Service) EvaluateEntity(ctx context.Context, entityID id.EntityID) (*EntityVerdict, error) {
	ctx, span := tracer.Start(ctx, "vacancy.EvaluateEntity")
	defer span.End()
	span.SetAttributes(attribute.String("entity_id", entityID.String()))

	// Both roles are judged against one instant.
	now := requestcontext.Now(ctx)
	ctx = requestcontext.WithTime(ctx, now)

	roster, err := personnel.Load(ctx, s.personnel, entityID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	verdict := &EntityVerdict{
		EntityID:     entityID,
		EntityName:   roster.Entity().Name,
		Understaffed: IsUnderStaffed(roster),
		Roles:        make(map[models.Role]*Result, 2),
		EvaluatedAt:  now,
	}
	for _, role := range models.StaffedRoles() {
		res, err := s.ExceededRoleVacancyTimeLimit(ctx, role, roster, nil)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		verdict.Roles[role] = res
	}

	if verdict.Breached() {
		s.logger.WarnContext(ctx, "entity role vacancy past limit",
			"entity_id", entityID,
			"entity_name", verdict.EntityName,
		)
	}
	return verdict, nil
}
