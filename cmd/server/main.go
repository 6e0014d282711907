package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/config"
	"github.com/likbrus/likbrus.github.io/internal/infra"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/notify"
	"github.com/likbrus/likbrus.github.io/internal/repository"
	"github.com/likbrus/likbrus.github.io/internal/router"
	"github.com/likbrus/likbrus.github.io/internal/worker"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON (+ rotating file)
	logCloser := infra.SetupLogger(cfg)
	defer logCloser.Close()

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Change feed: services publish to Redis, every instance fans out to its SSE clients
	publisher := notify.NewPublisher(rdb)
	bus := notify.NewBus()
	hub := notify.NewHub()
	if err := hub.Attach(bus); err != nil {
		log.Fatal().Err(err).Msg("failed to attach change hub")
	}
	if err := notify.AuditLog(bus); err != nil {
		log.Fatal().Err(err).Msg("failed to attach change audit log")
	}
	if err := notify.NewSubscriber(rdb, bus).Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to change feed")
	}

	// ── Async mail: the pool owns delivery, services only enqueue
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	pool := worker.NewPool(rdb, cfg.WorkerPoolSize)
	pool.Handle(worker.QueueEmail, worker.JobTypeEmail, worker.NewEmailWorker(mailer).Process)
	pool.Start(ctx)

	sched, err := worker.StartSummaryCron(ctx, worker.SummaryConfig{
		Products:  repository.NewProductRepository(db),
		Sales:     repository.NewSaleRepository(db),
		Queue:     dispatcher,
		To:        cfg.NotifyEmail,
		Spec:      cfg.SummaryCron,
		Threshold: cfg.LowStockThreshold,
		ClubName:  cfg.ClubName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule summary mail")
	}

	apiLimiter := middleware.NewLimiter("api", 1000, time.Minute, "For mange forespørsler. Prøv igjen om litt.")
	loginLimiter := middleware.NewLoginLimiter()
	apiLimiter.StartPurge(ctx)
	loginLimiter.StartPurge(ctx)

	r, err := router.New(cfg, db, rdb, router.Deps{
		Notifier:     publisher,
		Hub:          hub,
		Mailer:       mailer,
		Mail:         dispatcher,
		APILimiter:   apiLimiter,
		LoginLimiter: loginLimiter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := newHTTPServer(ctx, cfg.Port, r)

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s listening on :%d", cfg.ClubName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	// Request contexts derive from ctx: cancelling ends open /events
	// streams and stops the workers before Shutdown waits on them.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	<-sched.Stop().Done()
	pool.Wait()
	log.Info().Msg("server exited")
}

// newHTTPServer has no WriteTimeout: /events streams stay open for the life
// of a page. Every request context derives from ctx.
func newHTTPServer(ctx context.Context, port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     h,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}
