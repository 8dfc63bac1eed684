package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ett/internal/appconfig"
	configModel "ett/internal/appconfig/models"
	configStore "ett/internal/appconfig/store"
	"ett/internal/consenter"
	consenterStore "ett/internal/consenter/store"
	httpapi "ett/internal/http"
	"ett/internal/notify"
	personnelStore "ett/internal/personnel/store"
	"ett/internal/platform/config"
	"ett/internal/platform/httpserver"
	"ett/internal/platform/logger"
	"ett/internal/platform/metrics"
	"ett/internal/platform/postgres"
	"ett/internal/platform/redis"
	"ett/internal/sweep"
	"ett/internal/vacancy"
	"ett/pkg/platform/circuit"
)

// main wires high-level dependencies and keeps the process lifecycle small.
// Business logic lives in the engine packages.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("ett exited", "error", err)
		os.Exit(1)
	}
}

// stores groups the registry backends chosen at startup.
type stores struct {
	db         *sql.DB
	personnel  interface {
		vacancy.PersonnelStore
		sweep.EntityLister
	}
	consenters consenter.Store
	policies   appconfig.Provider
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer cache.Close()

	policies := st.policies
	if cache != nil {
		policies = configStore.NewRedisCache(policies, cache.Client, cfg.Redis.CacheTTL,
			configStore.WithCacheLogger(log),
			configStore.WithCacheMetrics(m),
		)
	}

	vacancies, err := vacancy.New(policies, st.personnel, vacancy.WithLogger(log), vacancy.WithMetrics(m))
	if err != nil {
		return err
	}
	consents, err := consenter.New(policies, st.consenters, consenter.WithLogger(log), consenter.WithMetrics(m))
	if err != nil {
		return err
	}

	publisher, closePublisher, kafkaHealth, err := openPublisher(cfg.Kafka, log, m)
	if err != nil {
		return err
	}
	defer closePublisher()

	sweeper, err := sweep.New(st.personnel, vacancies, consents, publisher,
		sweep.WithConcurrency(cfg.Sweep.Concurrency),
		sweep.WithRate(cfg.Sweep.RatePerSecond),
		sweep.WithLogger(log),
		sweep.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	scheduler, err := sweep.NewScheduler(cfg.Sweep.Schedule, sweeper, log)
	if err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			log.Warn("sweep did not stop in time", "error", err)
		}
	}()

	opts := []httpapi.Option{httpapi.WithLogger(log), httpapi.WithHealthCheck("redis", cache.Health)}
	if st.db != nil {
		opts = append(opts, httpapi.WithHealthCheck("postgres", st.db.PingContext))
	}
	if kafkaHealth != nil {
		opts = append(opts, httpapi.WithHealthCheck("kafka", kafkaHealth))
	}
	router := httpapi.NewRouter(httpapi.NewHandler(vacancies, consents, scheduler, registry, opts...))

	log.InfoContext(ctx, "starting ett",
		"addr", cfg.Addr,
		"schedule", cfg.Sweep.Schedule,
		"postgres", st.db != nil,
		"redis", cache != nil,
		"kafka", kafkaHealth != nil,
	)
	return httpserver.Serve(ctx, httpserver.New(cfg.Addr, router), 10*time.Second, log)
}

// openStores picks PostgreSQL when DATABASE_URL is set and in-memory stores
// otherwise. Policy lookups fall through file, database, then env defaults.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	defaults, err := defaultPolicies(cfg.Policy)
	if err != nil {
		return nil, err
	}
	var chain appconfig.Chain
	if cfg.PolicyFile != "" {
		file, err := appconfig.LoadFile(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, file)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if db == nil {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return &stores{
			personnel:  personnelStore.NewInMemory(),
			consenters: consenterStore.NewInMemory(),
			policies:   append(chain, defaults),
		}, nil
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		db:         db,
		personnel:  personnelStore.NewPostgres(db),
		consenters: consenterStore.NewPostgres(db),
		policies:   append(chain, configStore.NewPostgres(db), defaults),
	}, nil
}

func defaultPolicies(p config.PolicyDefaults) (*appconfig.Static, error) {
	var configs []*configModel.AppConfig
	for name, seconds := range map[configModel.ConfigName]int64{
		configModel.ConfigStaleAdminVacancy:    p.StaleAdminVacancySeconds,
		configModel.ConfigStaleCoSignerVacancy: p.StaleCoSignerVacancySeconds,
		configModel.ConfigConsentExpiration:    p.ConsentExpirationSeconds,
	} {
		c, err := configModel.NewAppConfig(name, seconds, "environment default")
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return appconfig.NewStatic(configs...), nil
}

// openPublisher returns Kafka guarded by a log fallback when brokers are
// configured, and the log publisher alone otherwise.
func openPublisher(cfg config.KafkaConfig, log *slog.Logger, m *metrics.Metrics) (notify.Publisher, func(), httpapi.HealthCheck, error) {
	logPublisher := notify.NewLogPublisher(log, m)
	if len(cfg.Brokers) == 0 {
		return logPublisher, func() {}, nil, nil
	}
	kafka, err := notify.NewKafkaPublisher(cfg, notify.WithKafkaLogger(log), notify.WithKafkaMetrics(m))
	if err != nil {
		return nil, nil, nil, err
	}
	publisher := notify.NewFallback(kafka, logPublisher, circuit.New("kafka"), log)
	return publisher, kafka.Close, kafka.Health, nil
}
