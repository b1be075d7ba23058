package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/courtside/ranking/external/notify"
	"github.com/courtside/ranking/internal/config"
	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/result"
	"github.com/courtside/ranking/internal/domain/season"
	"github.com/courtside/ranking/internal/infrastructure/repository/memory"
	"github.com/courtside/ranking/internal/infrastructure/repository/postgres"
	"github.com/courtside/ranking/internal/interfaces/httpapi"
	"github.com/courtside/ranking/internal/platform/cache"
	idgen "github.com/courtside/ranking/internal/platform/id"
	"github.com/courtside/ranking/internal/platform/logging"
	"github.com/courtside/ranking/internal/platform/resilience"
	"github.com/courtside/ranking/internal/usecase"
)

type repositories struct {
	athletes   athlete.Repository
	categories category.Repository
	events     event.Repository
	results    result.Repository
	seasons    season.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router into a ready
// server. When DB_URL is set the service runs against Postgres; otherwise it
// falls back to a seeded in-memory store, which is enough for local work.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	repos, err := newRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	var listCache *cache.Store
	if cfg.CacheEnabled {
		listCache = cache.NewStore(cfg.CacheTTL)
	}

	idGen := idgen.NewRandomGenerator()
	notifier := newNotifier(cfg, logger)

	rankingSvc := usecase.NewRankingService(repos.athletes, repos.results, listCache, cfg.RecomputeMaxWorkers)
	athleteSvc := usecase.NewAthleteService(repos.athletes, repos.categories, idGen)
	eventSvc := usecase.NewEventService(repos.events, repos.seasons, idGen)
	resultSvc := usecase.NewResultService(repos.athletes, repos.events, repos.results, repos.seasons, rankingSvc, idGen)
	categorySvc := usecase.NewCategoryService(repos.athletes, repos.categories, listCache, notifier, logger, idGen)
	seasonSvc := usecase.NewSeasonService(repos.seasons, repos.athletes, listCache, notifier, logger, idGen)
	rolloverSvc := usecase.NewRolloverService(seasonSvc, logger, idGen)
	duplicateSvc := usecase.NewDuplicateService(repos.athletes, rankingSvc, notifier, logger)
	importSvc := usecase.NewImportService(repos.athletes, resultSvc)

	handler := httpapi.NewHandler(
		athleteSvc,
		rankingSvc,
		eventSvc,
		resultSvc,
		categorySvc,
		seasonSvc,
		rolloverSvc,
		duplicateSvc,
		importSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func newRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.DBURL == "" {
		logger.Info("database disabled, using seeded in-memory store", "reason", "DB_URL empty")

		store := memory.NewStore()
		memory.Seed(store, time.Now().UTC())

		return repositories{
			athletes:   memory.NewAthleteRepository(store),
			categories: memory.NewCategoryRepository(store),
			events:     memory.NewEventRepository(store),
			results:    memory.NewResultRepository(store),
			seasons:    memory.NewSeasonRepository(store),
		}, nil
	}

	db, err := newDB(cfg)
	if err != nil {
		return repositories{}, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))

	return repositories{
		athletes:   postgres.NewAthleteRepository(db),
		categories: postgres.NewCategoryRepository(db),
		events:     postgres.NewEventRepository(db),
		results:    postgres.NewResultRepository(db),
		seasons:    postgres.NewSeasonRepository(db),
	}, nil
}

func newDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func newNotifier(cfg config.Config, logger *logging.Logger) usecase.Notifier {
	if !cfg.WebhookEnabled {
		logger.Info("webhook notifier disabled", "reason", "WEBHOOK_ENABLED=false")
		return usecase.NopNotifier{}
	}

	return notify.NewWebhookPublisher(notify.WebhookPublisherConfig{
		Endpoint: cfg.WebhookEndpoint,
		Token:    cfg.WebhookToken,
		Timeout:  cfg.WebhookTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.WebhookCircuitEnabled,
			FailureThreshold: cfg.WebhookCircuitFailureCount,
			OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMax,
		},
	}, logger)
}
