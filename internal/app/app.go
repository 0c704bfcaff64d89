package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/adapter/postgres"
	redisadapter "github.com/user/trend-ingest/internal/adapter/redis"
	"github.com/user/trend-ingest/internal/adapter/youtube"
	"github.com/user/trend-ingest/internal/analysis"
	"github.com/user/trend-ingest/internal/delivery/http/handler"
	"github.com/user/trend-ingest/internal/usecase"
	"github.com/user/trend-ingest/pkg/config"
	"github.com/user/trend-ingest/pkg/metrics"
)

// App holds the wired dependencies shared by the binaries.
type App struct {
	Runner  usecase.Runner
	Metrics *metrics.Metrics
	Deps    map[string]handler.Pinger

	db  *pgxpool.Pool
	rdb *redis.Client
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// New connects to PostgreSQL and Redis, applies the schema and builds the
// ingest pipeline.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*App, error) {
	m := metrics.New(reg)

	vocab, err := analysis.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	logger.Info("Redis connection established")

	platform, err := youtube.NewClient(ctx, youtube.ClientConfig{
		APIKey:    cfg.YouTubeAPIKey,
		Endpoint:  cfg.YouTubeEndpoint,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
	}, m, logger.Named("youtube"))
	if err != nil {
		db.Close()
		_ = rdb.Close()
		return nil, err
	}

	store := postgres.NewTrendStore(db)
	discoverer := usecase.NewDiscoveryUseCase(platform, m, logger.Named("discovery"))
	orchestrator := usecase.NewIngestUseCase(
		cfg.Regions,
		discoverer,
		analysis.NewClassifier(vocab),
		analysis.NewKeywordExtractor(vocab),
		store,
		m,
		logger.Named("ingest"),
	)
	runner := usecase.NewRunnerUseCase(
		orchestrator,
		store,
		redisadapter.NewRunLockRepo(rdb),
		redisadapter.NewRunStatusRepo(rdb),
		cfg.RunLockTTL,
		m,
		logger.Named("runner"),
	)

	return &App{
		Runner:  runner,
		Metrics: m,
		Deps: map[string]handler.Pinger{
			"postgres": store,
			"redis":    pingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		db:  db,
		rdb: rdb,
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	a.db.Close()
	_ = a.rdb.Close()
}
