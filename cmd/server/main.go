// Package main provides the engine server binary that loads a world
// document and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/api"
	"github.com/fable-engine/fable/internal/config"
	"github.com/fable-engine/fable/internal/game/asset"
	"github.com/fable-engine/fable/internal/game/combat"
	"github.com/fable-engine/fable/internal/game/dice"
	"github.com/fable-engine/fable/internal/game/engine"
	"github.com/fable-engine/fable/internal/game/event"
	"github.com/fable-engine/fable/internal/game/session"
	"github.com/fable-engine/fable/internal/observability"
	"github.com/fable-engine/fable/internal/server"
	"github.com/fable-engine/fable/internal/storage/postgres"
	"github.com/fable-engine/fable/internal/storage/redis"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	worldPath := flag.String("world", "", "path to world document; overrides game.world_file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load world
	worldFile := cfg.Game.WorldFile
	if *worldPath != "" {
		worldFile = *worldPath
	}
	loadStart := time.Now()
	w, err := asset.LoadFile(worldFile)
	if err != nil {
		logger.Fatal("loading world", zap.String("file", worldFile), zap.Error(err))
	}
	logger.Info("world loaded",
		zap.String("file", worldFile),
		zap.Int("rooms", len(w.Rooms.AllRooms())),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	seed := cfg.Game.CombatSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	resolver := combat.NewResolver(dice.NewSeededSource(seed), cfg.Game.CombatRoundCap)
	proc := event.NewProcessor(w.Registry, resolver, observability.Component(logger, "events"))
	eng := engine.New(w.Rooms, w.Registry, proc, observability.Component(logger, "engine"))
	sessions := session.NewManager(eng)

	var opts []api.Option

	// Connect to PostgreSQL when persistence is enabled
	var pool *postgres.Pool
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts = append(opts, api.WithPersistence(pool.Accounts(), pool.Saves()))
	}

	var cache *redis.SnapshotCache
	if cfg.Redis.Enabled {
		cache = redis.NewSnapshotCache(cfg.Redis.Addr, cfg.Redis.SnapshotTTL, logger)
		if err := cache.Ping(ctx); err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
		logger.Info("snapshot cache connected", zap.String("addr", cfg.Redis.Addr))
		opts = append(opts, api.WithSnapshotCache(cache))
	}

	apiServer := api.NewServer(sessions, observability.Component(logger, "api"), opts...)
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      apiServer.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger, 15*time.Second)

	lifecycle.Hook(server.Hook{
		Name: "http",
		Run: func() error {
			logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving HTTP on %s: %w", httpServer.Addr, err)
			}
			return nil
		},
		Close: httpServer.Shutdown,
	})

	if pool != nil {
		lifecycle.Keepalive("postgres", 30*time.Second,
			func(ctx context.Context) error { return pool.Health(ctx, 5*time.Second) },
			func() error { pool.Close(); return nil })
	}

	if cache != nil {
		lifecycle.Keepalive("redis", 30*time.Second, cache.Ping, cache.Close)
	}

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
