package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rubemlrm/jogging-tracker/internal/config"
	"github.com/Rubemlrm/jogging-tracker/internal/logging"
	"github.com/Rubemlrm/jogging-tracker/internal/outbox"
	"github.com/Rubemlrm/jogging-tracker/internal/persistence/postgres"
	httptransport "github.com/Rubemlrm/jogging-tracker/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.Store != config.StorePostgres {
		logging.Fatal().Str("store", cfg.Store).Msg("the relay reads the postgres outbox; set STORE=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(outbox.NewPostgresSource(pool), producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	go dispatcher.Start(ctx)
	go outbox.RunJanitor(ctx, postgres.NewRepository(pool), cfg.PurgeInterval)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serverCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	metricsSrv := httptransport.NewServer(serverCfg, mux)

	logging.Info().Str("addr", cfg.MetricsAddress).Strs("brokers", cfg.KafkaBrokers).Msg("outbox relay started")
	if err := httptransport.Serve(ctx, metricsSrv, serverCfg.ShutdownTimeout); err != nil {
		logging.Error().Err(err).Msg("metrics server error")
		stop()
	}

	dispatcher.Wait()
	logging.Info().Msg("outbox relay stopped")
}
