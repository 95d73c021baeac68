package commands

import (
	"context"
	"fmt"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/internal/execution"
	"github.com/wonny/energyls/internal/rebalance"
	"github.com/wonny/energyls/internal/signals"
	"github.com/wonny/energyls/internal/strategyconfig"
	"github.com/wonny/energyls/internal/universe"
	"github.com/wonny/energyls/pkg/config"
	"github.com/wonny/energyls/pkg/database"
	"github.com/wonny/energyls/pkg/logger"
	"github.com/wonny/energyls/pkg/metrics"
	"github.com/wonny/energyls/pkg/redis"
)

const cachePrefix = "energyls"

// app holds the process-wide dependencies shared by commands
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	redis        *redis.Client
	cache        *redis.Cache
	strategy     *strategyconfig.Config
	strategyHash string
	prices       *universe.Repository
	plans        *execution.Repository
	metrics      *metrics.Recorder
}

// loadConfig reads env config and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if strategyFile != "" {
		cfg.StrategyConfigPath = strategyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// loadStrategy loads and validates the strategy file, logging its warnings
func loadStrategy(cfg *config.Config, log *logger.Logger) (*strategyconfig.Config, string, error) {
	strategy, _, err := strategyconfig.Load(cfg.StrategyConfigPath)
	if err != nil {
		return nil, "", err
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, "", err
	}

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy warning")
	}

	return strategy, hash, nil
}

// newApp connects to PostgreSQL and Redis and loads the strategy
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	strategy, hash, err := loadStrategy(cfg, log)
	if err != nil {
		return nil, err
	}

	// 4. Connect to database
	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Connect to Redis (no-op when disabled)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"strategy":      strategy.Meta.StrategyID,
		"strategy_hash": hash,
		"redis":         rdb.Enabled(),
	}).Info("Dependencies initialized")

	return &app{
		cfg:          cfg,
		log:          log,
		db:           db,
		redis:        rdb,
		cache:        redis.NewCache(rdb, cachePrefix),
		strategy:     strategy,
		strategyHash: hash,
		prices:       universe.NewRepository(db.Pool),
		plans:        execution.NewRepository(db.Pool),
		metrics:      metrics.NewRecorder(),
	}, nil
}

func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Redis close failed")
	}
	a.db.Close()
}

// snapshotProvider returns the universe builder behind the Redis snapshot cache
func (a *app) snapshotProvider() contracts.SnapshotProvider {
	builder := universe.NewBuilder(a.prices, a.strategy.UniverseConfig(), a.log)
	return universe.NewCachedProvider(builder, a.cache, a.strategyHash, a.log)
}

// rebalancer wires the full cycle
func (a *app) rebalancer() (*rebalance.Rebalancer, error) {
	sinks := []contracts.PlanSink{a.plans, execution.NewLogSink(a.log)}
	if a.redis.Enabled() {
		sinks = append(sinks, execution.NewPublisher(a.redis, a.cfg.PlanChannel, a.log))
	}

	return rebalance.New(rebalance.Deps{
		Provider:    a.snapshotProvider(),
		Holdings:    a.prices,
		Tradability: a.prices,
		Engine:      signals.NewEngine(a.strategy.EngineConfig(), a.log),
		Sinks:       sinks,
		DryRunSinks: []contracts.PlanSink{execution.NewLogSink(a.log)},
		Metrics:     a.metrics,
		Logger:      a.log,
	})
}
