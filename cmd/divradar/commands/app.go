package commands

import (
	"fmt"

	"github.com/divradar/backend/internal/external/yahoo"
	"github.com/divradar/backend/internal/s0_data"
	"github.com/divradar/backend/internal/scheduler/jobs"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/database"
	"github.com/divradar/backend/pkg/httputil"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client
	deps  *jobs.Deps
}

// newApp loads config and connects everything. Callers must Close.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	httpClient := httputil.New(cfg, log)
	provider := yahoo.NewClient(cfg, httpClient, log).
		WithSharedLimiter(redis.NewRateLimiter(redisClient, "divradar"))

	deps := &jobs.Deps{
		Provider:  provider,
		Stocks:    s0_data.NewStockRepository(db.Pool),
		Prices:    s0_data.NewPriceRepository(db.Pool),
		Dividends: s0_data.NewDividendRepository(db.Pool),
		Splits:    s0_data.NewSplitRepository(db.Pool),
		Sectors:   s0_data.NewSectorRepository(db.Pool),
		Countries: s0_data.NewCountryRepository(db.Pool),
		Cache:     redis.NewCache(redisClient, "divradar"),
		Config:    cfg,
		Logger:    log,
	}

	return &app{cfg: cfg, log: log, db: db, redis: redisClient, deps: deps}, nil
}

// jobLogger honors the global --silent flag for interactive runs
func (a *app) jobLogger() *logger.Logger {
	if silent {
		return logger.NewSilent()
	}
	return a.log
}

// Close releases all connections
func (a *app) Close() {
	a.redis.Close()
	a.db.Close()
}
