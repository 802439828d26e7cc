package bootstrap

import (
	"context"
	"fmt"

	"github.com/d3code/home-assistant-coingecko/internal/application"
	"github.com/d3code/home-assistant-coingecko/internal/config"
	"github.com/d3code/home-assistant-coingecko/internal/domain"
	"github.com/d3code/home-assistant-coingecko/internal/infrastructure/logx"
	"github.com/d3code/home-assistant-coingecko/internal/infrastructure/pg"
	"github.com/d3code/home-assistant-coingecko/internal/infrastructure/provider"
	redisstore "github.com/d3code/home-assistant-coingecko/internal/infrastructure/redis"
	"github.com/redis/go-redis/v9"
)

// BuildPairs normalizes the configured pair specification into the canonical
// trading-pair set. TRADING_PAIRS wins over COIN_ID/CURRENCY when both are set.
func BuildPairs(cfg config.Config) ([]domain.TradingPair, error) {
	overrides, err := domain.ParseSymbolMap(cfg.SymbolMap)
	if err != nil {
		return nil, fmt.Errorf("SYMBOL_MAP: %w", err)
	}
	resolver := domain.NewSymbolResolver(overrides)

	var spec domain.PairSpec
	if cfg.TradingPairs != "" {
		spec, err = domain.CompactPairs(cfg.TradingPairs)
	} else {
		spec, err = domain.SinglePair(cfg.CoinID, cfg.Currency)
	}
	if err != nil {
		return nil, err
	}
	return spec.Pairs(resolver), nil
}

// BuildSource returns the configured price source.
func BuildSource(cfg config.Config) application.PriceSource {
	switch cfg.Provider {
	case "fake":
		return provider.NewFake(1.2345)
	default:
		return &provider.CoinGecko{BaseURL: cfg.APIBase}
	}
}

// BuildSinks assembles the optional snapshot sinks: a Redis mirror when
// REDIS_ADDR is set, a Postgres history recorder when DATABASE_URL is set.
func BuildSinks(ctx context.Context, cfg config.Config) ([]application.SnapshotSink, func(), error) {
	log := logx.L()
	var sinks []application.SnapshotSink
	var cleanups []func()

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		sinks = append(sinks, redisstore.NewMirror(client, cfg.SnapshotTTL))
		cleanups = append(cleanups, func() { _ = client.Close() })
	}

	if cfg.DatabaseURL != "" {
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			runAll(cleanups)
			return nil, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			runAll(cleanups)
			return nil, func() {}, err
		}
		sinks = append(sinks, pg.NewHistoryRepo(db))
		cleanups = append(cleanups, func() {
			log.Info("closing pg")
			db.Close()
		})
	}

	return sinks, func() { runAll(cleanups) }, nil
}

func runAll(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// BuildCoordinator wires pairs, source and sinks into the coordinator and
// one sensor façade per configured pair.
func BuildCoordinator(ctx context.Context, cfg config.Config) (*application.Coordinator, []*application.Sensor, func(), error) {
	pairs, err := BuildPairs(cfg)
	if err != nil {
		return nil, nil, func() {}, err
	}
	sinks, cleanup, err := BuildSinks(ctx, cfg)
	if err != nil {
		return nil, nil, func() {}, err
	}
	coordinator := application.NewCoordinator(pairs, BuildSource(cfg),
		application.WithInterval(cfg.ScanInterval),
		application.WithLogger(logx.L()),
		application.WithSinks(sinks...),
	)
	sensors := application.NewSensors(coordinator, pairs)
	return coordinator, sensors, cleanup, nil
}
