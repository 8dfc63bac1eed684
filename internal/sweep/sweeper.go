// Package sweep evaluates every entity and consenter in the registry at one
// pinned instant and publishes an event for each verdict that needs action.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"ett/internal/consenter"
	consenterModel "ett/internal/consenter/models"
	"ett/internal/notify"
	"ett/internal/platform/metrics"
	"ett/internal/vacancy"
	id "ett/pkg/domain"
	"ett/pkg/requestcontext"
)

var tracer = otel.Tracer("ett/internal/sweep")

// EntityLister enumerates the entities a sweep covers.
type EntityLister interface {
	ListEntityIDs(ctx context.Context) ([]id.EntityID, error)
}

// VacancyEvaluator produces the staffing verdict for one entity.
type VacancyEvaluator interface {
	EvaluateEntity(ctx context.Context, entityID id.EntityID) (*vacancy.EntityVerdict, error)
}

// ConsentEvaluator enumerates consenters and classifies them.
type ConsentEvaluator interface {
	List(ctx context.Context) ([]*consenterModel.Consenter, error)
	Classify(ctx context.Context, c *consenterModel.Consenter) (consenter.Verdict, error)
}

// Summary counts what one sweep saw. Failures covers evaluations and
// publications that errored; they are logged and do not stop the sweep.
type Summary struct {
	SweepID      string        `json:"sweep_id"`
	EvaluatedAt  time.Time     `json:"evaluated_at"`
	Entities     int           `json:"entities"`
	Understaffed int           `json:"understaffed"`
	Breached     int           `json:"breached"`
	Consenters   int           `json:"consenters"`
	Expired      int           `json:"expired"`
	Failures     int           `json:"failures"`
	Elapsed      time.Duration `json:"elapsed"`
}

type Sweeper struct {
	entities    EntityLister
	vacancies   VacancyEvaluator
	consents    ConsentEvaluator
	publisher   notify.Publisher
	concurrency int
	limiter     *rate.Limiter
	clock       func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Sweeper)

// WithConcurrency bounds how many evaluations run at once.
func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRate paces evaluations to perSecond. Zero or less disables pacing.
func WithRate(perSecond float64) Option {
	return func(s *Sweeper) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		s.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func New(entities EntityLister, vacancies VacancyEvaluator, consents ConsentEvaluator, publisher notify.Publisher, opts ...Option) (*Sweeper, error) {
	if entities == nil {
		return nil, fmt.Errorf("entity lister is required")
	}
	if vacancies == nil {
		return nil, fmt.Errorf("vacancy evaluator is required")
	}
	if consents == nil {
		return nil, fmt.Errorf("consent evaluator is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	s := &Sweeper{
		entities:    entities,
		vacancies:   vacancies,
		consents:    consents,
		publisher:   publisher,
		concurrency: 8,
		clock:       time.Now,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// tally guards Summary counters shared by sweep workers.
type tally struct {
	mu sync.Mutex
	*Summary
}

func (t *tally) add(fn func(*Summary)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.Summary)
}

// Run performs one sweep. It fails only when the registry cannot be listed or
// ctx ends; per-record failures are counted in the Summary.
func (s *Sweeper) Run(ctx context.Context) (*Summary, error) {
	start := s.clock()
	sweepID := notify.NewSweepID(start)
	ctx = requestcontext.WithSweepID(ctx, sweepID)
	ctx = requestcontext.WithTime(ctx, start)

	ctx, span := tracer.Start(ctx, "sweep.Run")
	defer span.End()
	span.SetAttributes(attribute.String("sweep_id", sweepID))

	t := &tally{Summary: &Summary{SweepID: sweepID, EvaluatedAt: start}}
	s.logger.InfoContext(ctx, "sweep started", "sweep_id", sweepID, "evaluated_at", start)

	err := errors.Join(s.sweepEntities(ctx, t), s.sweepConsenters(ctx, t))
	t.Elapsed = s.clock().Sub(start)

	s.metrics.ObserveSweep(t.Elapsed, err)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "sweep aborted", "sweep_id", sweepID, "error", err)
		return t.Summary, err
	}
	s.metrics.SetSweepTotals(t.Understaffed, t.Breached, t.Expired)
	s.logger.InfoContext(ctx, "sweep finished",
		"sweep_id", sweepID,
		"entities", t.Entities,
		"understaffed", t.Understaffed,
		"breached", t.Breached,
		"consenters", t.Consenters,
		"expired", t.Expired,
		"failures", t.Failures,
		"elapsed", t.Elapsed,
	)
	return t.Summary, nil
}

func (s *Sweeper) sweepEntities(ctx context.Context, t *tally) error {
	ids, err := s.entities.ListEntityIDs(ctx)
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, entityID := range ids {
		if err := s.wait(gctx); err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			s.evaluateEntity(requestcontext.WithEntityID(gctx, entityID), entityID, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Sweeper) evaluateEntity(ctx context.Context, entityID id.EntityID, t *tally) {
	verdict, err := s.vacancies.EvaluateEntity(ctx, entityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "entity evaluation failed", "entity_id", entityID, "error", err)
		t.add(func(sum *Summary) { sum.Failures++ })
		return
	}

	var events []notify.Event
	if verdict.Understaffed {
		events = append(events, notify.NewEvent(ctx, notify.KindUnderstaffed, entityID.String(), verdict))
	}
	breached := false
	for _, res := range verdict.Roles {
		if res.Breached {
			breached = true
			events = append(events, notify.NewEvent(ctx, notify.KindVacancyBreached, entityID.String(), res))
		}
	}
	failures := s.publish(ctx, events)

	t.add(func(sum *Summary) {
		sum.Entities++
		sum.Failures += failures
		if verdict.Understaffed {
			sum.Understaffed++
		}
		if breached {
			sum.Breached++
		}
	})
}

func (s *Sweeper) sweepConsenters(ctx context.Context, t *tally) error {
	consenters, err := s.consents.List(ctx)
	if err != nil {
		return fmt.Errorf("list consenters: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range consenters {
		if err := s.wait(gctx); err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			s.evaluateConsenter(gctx, c, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Sweeper) evaluateConsenter(ctx context.Context, c *consenterModel.Consenter, t *tally) {
	verdict, err := s.consents.Classify(ctx, c)
	if err != nil {
		s.logger.ErrorContext(ctx, "consent evaluation failed", "email", c.Email, "error", err)
		t.add(func(sum *Summary) { sum.Failures++ })
		return
	}

	expired := verdict.Status == consenterModel.StatusExpired
	failures := 0
	if expired {
		failures = s.publish(ctx, []notify.Event{notify.NewEvent(ctx, notify.KindConsentExpired, c.Email, verdict)})
	}
	t.add(func(sum *Summary) {
		sum.Consenters++
		sum.Failures += failures
		if expired {
			sum.Expired++
		}
	})
}

// publish sends events and returns how many failed.
func (s *Sweeper) publish(ctx context.Context, events []notify.Event) int {
	failed := 0
	for _, e := range events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "publish verdict event failed",
				"event_id", e.ID,
				"kind", e.Kind,
				"subject", e.Subject,
				"error", err,
			)
		}
	}
	return failed
}

func (s *Sweeper) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}
