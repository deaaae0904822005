package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stecc88/roommatch/internal/app"
	"github.com/stecc88/roommatch/internal/cache"
	"github.com/stecc88/roommatch/internal/config"
	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/logger"
	"github.com/stecc88/roommatch/internal/server"
	"github.com/stecc88/roommatch/internal/service/matchmaking"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// Inject logger into app context
	appCtx := app.New(cfg, database, redisCache, log)

	registrars := []server.Registrar{
		matchmaking.NewRegistrar(appCtx),
	}

	if cfg.IsDevelopment() {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port, "db", cfg.DB.Driver)

	if err := server.StartGRPCServer(ctx, cfg, log, registrars...); err != nil {
		log.Error("gRPC server failed", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
