package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/casetrace-systems/casetrace/common/audit"
	"github.com/casetrace-systems/casetrace/common/logging"
	"github.com/casetrace-systems/casetrace/common/messaging"
	natsclient "github.com/casetrace-systems/casetrace/common/messaging/nats"
	"github.com/casetrace-systems/casetrace/investigate/internal/cache"
	"github.com/casetrace-systems/casetrace/investigate/internal/config"
	"github.com/casetrace-systems/casetrace/investigate/internal/gateway"
	"github.com/casetrace-systems/casetrace/investigate/internal/handlers"
	"github.com/casetrace-systems/casetrace/investigate/internal/report"
	"github.com/casetrace-systems/casetrace/investigate/internal/repository"
	"github.com/casetrace-systems/casetrace/investigate/internal/server"
	"github.com/casetrace-systems/casetrace/investigate/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logger.Info("starting investigate service", logging.Service("investigate"))

	ctx := context.Background()

	// Run database migrations
	m, err := migrate.New("file://migrations", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to initialize migrations", logging.Error(err))
		os.Exit(1)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Error("failed to run migrations", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	repo, err := repository.NewPostgresRepository(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", logging.Error(err))
		os.Exit(1)
	}
	defer repo.Close()

	store, err := gateway.NewOpenSearchStore(gateway.Config{
		URL:      cfg.OpenSearch.URL,
		Username: cfg.OpenSearch.Username,
		Password: cfg.OpenSearch.Password,
		Insecure: cfg.OpenSearch.Insecure,
		Index:    cfg.OpenSearch.Index,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to OpenSearch", logging.Error(err))
		os.Exit(1)
	}
	if err := store.EnsureIndex(ctx); err != nil {
		logger.Error("failed to ensure event index", logging.Error(err))
		os.Exit(1)
	}

	var publisher messaging.Publisher
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.Name = "casetrace-investigate"
		nc, err := natsclient.NewClient(natsCfg)
		if err != nil {
			logger.Error("failed to connect to NATS", logging.Error(err))
			os.Exit(1)
		}
		defer nc.Close()
		publisher = nc
	} else {
		logger.Warn("NATS disabled, audit events will not be broadcast")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	reports := cache.NewReportCache(redisClient, cfg.Redis.ReportTTL)

	var signer *audit.RecordSigner
	if cfg.Auth.AuditSecret != "" {
		signer = audit.NewRecordSigner(cfg.Auth.AuditSecret)
	} else {
		logger.Warn("audit secret not set, records will be stored unsigned")
	}

	svc := service.NewService(repo, store, reports, report.NewSynthesizer(), signer, publisher, logger)
	handler := handlers.NewHandler(svc, logger)
	router := server.NewRouter(handler, logger, server.Options{
		AuthSecret:  cfg.Auth.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("investigate service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", logging.Error(err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", logging.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
