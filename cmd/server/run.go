package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"blog-api/internal/auth"
	"blog-api/internal/cache"
	"blog-api/internal/config"
	"blog-api/internal/database"
	"blog-api/internal/handlers"
	"blog-api/internal/logger"
	"blog-api/internal/pipeline"
	"blog-api/internal/realtime"
	"blog-api/internal/repository"
	"blog-api/internal/routes"
	"blog-api/internal/telemetry"
)

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting blog-api", zap.String("version", version), zap.String("addr", cfg.Server.Addr))

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Wire the pipeline
	var responses *cache.ResponseCache
	if cfg.Cache.Enabled {
		store := cache.NewStore[[]byte](cfg.Cache.TTL, cache.WithShards(cfg.Cache.Shards))
		responses = cache.NewResponseCache(store, log, metrics)
		if cfg.Cache.SweepInterval > 0 {
			go func() { _ = store.Run(ctx, cfg.Cache.SweepInterval) }()
		}
	}
	hub := realtime.NewHub(log)
	p := pipeline.New(pipeline.Config{Cache: responses, Notifier: hub, Metrics: metrics, Logger: log})

	posts := repository.NewPosts(db, cfg.Database.QueryTimeout)
	h := handlers.New(
		repository.NewAuthors(db, cfg.Database.QueryTimeout),
		posts,
		repository.NewComments(db, posts, cfg.Database.QueryTimeout),
		cfg.Pagination,
	)

	var signer *auth.Signer
	if cfg.Auth.Enabled {
		signer = auth.NewSigner(cfg.Auth)
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: routes.SetupRoutes(routes.Deps{
			Handlers: h,
			Pipeline: p,
			Hub:      hub,
			Signer:   signer,
			Users:    cfg.Auth.Users,
			Gatherer: reg,
			Metrics:  metrics,
			Logger:   log,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("blog-api ready",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("auth", cfg.Auth.Enabled),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.Stringer("signal", sig))
	case err := <-errCh:
		return err
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("blog-api stopped")
	return nil
}
