package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rubemlrm/jogging-tracker/internal/api"
	"github.com/Rubemlrm/jogging-tracker/internal/auth"
	"github.com/Rubemlrm/jogging-tracker/internal/config"
	"github.com/Rubemlrm/jogging-tracker/internal/domain"
	"github.com/Rubemlrm/jogging-tracker/internal/logging"
	"github.com/Rubemlrm/jogging-tracker/internal/persistence/memory"
	"github.com/Rubemlrm/jogging-tracker/internal/persistence/postgres"
	httptransport "github.com/Rubemlrm/jogging-tracker/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store domain.Store
	switch cfg.Store {
	case config.StoreMemory:
		logging.Warn().Msg("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()

		if cfg.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool); err != nil {
				logging.Fatal().Err(err).Msg("run migrations")
			}
		}
		store = postgres.NewRepository(pool)
	}

	service := domain.NewService(store, domain.NewPolicy(domain.GlobalManagerScope{}))

	handler := api.NewRouter(service, api.Config{
		Auth:           auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL},
		SessionTTL:     cfg.SessionTTL,
		PageSize:       cfg.PageSize,
		MaxPageSize:    cfg.MaxPageSize,
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		SecureCookies:  cfg.SecureCookies,
	})

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	server := httptransport.NewServer(serverCfg, handler)

	logging.Info().Str("addr", cfg.HTTPAddress).Str("store", cfg.Store).Msg("jogging tracker api listening")
	if err := httptransport.Serve(ctx, server, serverCfg.ShutdownTimeout); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
		return
	}
	logging.Info().Msg("api stopped")
}
