package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	draftservice "kycreview/internal/draft/service"
	draftstore "kycreview/internal/draft/store"
	"kycreview/internal/identity/coresystem"
	identityservice "kycreview/internal/identity/service"
	identitystore "kycreview/internal/identity/store"
	jwttoken "kycreview/internal/jwt_token"
	"kycreview/internal/platform/config"
	"kycreview/internal/platform/metrics"
	"kycreview/internal/platform/redis"
	"kycreview/internal/storage"
	submissionservice "kycreview/internal/submission/service"
	submissionstore "kycreview/internal/submission/store"
	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/audit/publisher"
	"kycreview/pkg/platform/audit/publisher/kafka"
	auditmemory "kycreview/pkg/platform/audit/store/memory"
	auditpostgres "kycreview/pkg/platform/audit/store/postgres"
	"kycreview/pkg/platform/audit/worker"
	"kycreview/pkg/platform/circuit"
	"kycreview/pkg/platform/tx"
)

const (
	tokenIssuer    = "kycreview"
	tokenAudience  = "kycreview-api"
	streamBuffer   = 1024
	startupTimeout = 30 * time.Second
)

// app owns every long-lived dependency of the process.
type app struct {
	cfg     config.Server
	log     *slog.Logger
	metrics *metrics.Metrics

	db     *sql.DB
	redis  *redis.Client
	sink   *kafka.Sink
	stream *worker.Worker

	tokens      *jwttoken.JWTService
	identities  *identityservice.Service
	submissions *submissionservice.Service
	drafts      *draftservice.Service
}

type appOptions struct {
	migrate    bool
	registerer prometheus.Registerer
}

func newApp(ctx context.Context, cfg config.Server, log *slog.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, log: log, metrics: metrics.New(opts.registerer)}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := a.openDatabase(startCtx, opts.migrate); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openStream(startCtx); err != nil {
		a.Close()
		return nil, err
	}
	rc, err := redis.New(startCtx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = rc

	a.wireServices()
	return a, nil
}

func (a *app) openDatabase(ctx context.Context, migrate bool) error {
	if a.cfg.DatabaseURL == "" {
		a.log.Warn("DATABASE_URL not set, using in-memory stores")
		return nil
	}
	db, err := sql.Open("postgres", a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	a.db = db
	if migrate {
		if err := storage.Migrate(ctx, db, a.log); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) openStream(ctx context.Context) error {
	if len(a.cfg.Kafka.Brokers) == 0 {
		return nil
	}
	sink, err := kafka.NewSink(a.cfg.Kafka.Brokers, a.cfg.Kafka.AuditTopic)
	if err != nil {
		return err
	}
	a.sink = sink
	if err := sink.EnsureTopic(ctx, a.cfg.Kafka.Partitions, 1); err != nil {
		return err
	}
	a.stream = worker.NewWorker(sink, streamBuffer, a.log)
	a.stream.Start()
	return nil
}

func (a *app) wireServices() {
	var (
		runner     tx.Runner
		identities interface {
			identityservice.Store
			submissionservice.IdentityStore
		}
		submissions submissionservice.Store
		changeLog   audit.Store
	)
	if a.db != nil {
		runner = tx.NewSQLRunner(a.db)
		identities = identitystore.NewPostgres(a.db)
		submissions = submissionstore.NewPostgres(a.db)
		changeLog = auditpostgres.New(a.db)
	} else {
		runner = tx.NewShardedRunner()
		identities = identitystore.NewInMemory()
		submissions = submissionstore.NewInMemory()
		changeLog = auditmemory.NewInMemoryStore()
	}

	var drafts draftservice.Store
	if a.redis != nil {
		drafts = draftstore.NewRedis(a.redis.Client)
	} else {
		drafts = draftstore.NewInMemory()
	}

	recorderOpts := []publisher.Option{publisher.WithLogger(a.log), publisher.WithMetrics(a.metrics)}
	if a.stream != nil {
		recorderOpts = append(recorderOpts, publisher.WithStream(a.stream))
	}
	recorder := publisher.NewRecorder(changeLog, recorderOpts...)

	a.tokens = jwttoken.NewJWTService(a.cfg.JWTSigningKey, tokenIssuer, tokenAudience)
	a.identities = identityservice.New(identities, a.registry(),
		identityservice.WithLogger(a.log),
		identityservice.WithMetrics(a.metrics),
		identityservice.WithTxRunner(runner),
	)
	a.submissions = submissionservice.New(submissions, identities, recorder,
		submissionservice.WithLogger(a.log),
		submissionservice.WithMetrics(a.metrics),
		submissionservice.WithTxRunner(runner),
		submissionservice.WithDrafts(drafts),
		submissionservice.WithSoftLockWindow(a.cfg.SoftLockWindow),
	)
	a.drafts = draftservice.New(drafts,
		draftservice.WithLogger(a.log),
		draftservice.WithTTL(a.cfg.DraftTTL),
	)
}

func (a *app) registry() identityservice.Registry {
	if a.cfg.CoreSystem.BaseURL == "" {
		a.log.Warn("CORE_API_BASE_URL not set, using the seeded in-memory policy registry")
		return coresystem.NewMemoryRegistry(coresystem.DevOwners()...)
	}
	return coresystem.NewClient(a.cfg.CoreSystem.BaseURL, a.cfg.CoreSystem.Token, a.cfg.CoreSystem.Timeout,
		coresystem.WithBreaker(circuit.New("core-system", circuit.WithCooldown(30*time.Second))),
		coresystem.WithMetrics(a.metrics),
	)
}

func (a *app) storageKind() string {
	if a.db != nil {
		return "postgres"
	}
	return "memory"
}

// Close releases resources in reverse start order. Queued change log
// batches are flushed before the Kafka client closes.
func (a *app) Close() {
	if a.stream != nil {
		a.stream.Close()
	}
	if a.sink != nil {
		a.sink.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
