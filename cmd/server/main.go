package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrotrace/internal/config"
	"agrotrace/internal/infra"
	"agrotrace/internal/repository"
	"agrotrace/internal/router"
	"agrotrace/internal/service"
	"agrotrace/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async workers, report exports, and expiry alerts are wired here
	// (composition root) so the pool has full access to infrastructure.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registryCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	producerRepo := repository.NewProducerRepository(db)
	receptionRepo := repository.NewReceptionRepository(db)
	consolidationRepo := repository.NewConsolidationRepository(db)
	expeditionRepo := repository.NewExpeditionRepository(db)
	traceSvc := service.NewTraceabilityService(receptionRepo, consolidationRepo, expeditionRepo)

	reportWorker := worker.NewReportWorker(traceSvc, mailer, cfg.ReportStoragePath)
	alertWorker := worker.NewAlertWorker(mailer)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
		worker.QueueReport: reportWorker.Process,
		worker.QueueAlert:  alertWorker.Process,
	})

	worker.StartExpiryCron(ctx, worker.ExpiryCronConfig{
		Producers:  producerRepo,
		Dispatcher: dispatcher,
		RDB:        rdb,
		AlertEmail: cfg.AlertEmail,
		Window:     time.Duration(cfg.ExpiryAlertDays) * 24 * time.Hour,
	})

	r := router.New(cfg, db, rdb, registryCB, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("agrotrace backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
