// Package main provides the poesy blog API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poesyliang/poesy-blog/internal/config"
	"github.com/poesyliang/poesy-blog/internal/db"
	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/poesyliang/poesy-blog/internal/server"
	"github.com/poesyliang/poesy-blog/internal/upstream"
)

func main() {
	configFile := flag.String("config", "", "config file")
	wipeDB := flag.Bool("wipe", false, "delete stored migration runs on startup (testing only)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(cfg, logger, *wipeDB); err != nil {
		logger.Error("server failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, wipe bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	collector := metrics.NewCollector()
	clientOpts := []upstream.Option{
		upstream.WithTimeout(cfg.HTTPTimeout),
		upstream.WithLogger(logger),
		upstream.WithMetrics(collector),
	}
	comClient := upstream.New(models.OriginCom.String(), cfg.ComBaseURL, cfg.ComToken, clientOpts...)
	netClient := upstream.New(models.OriginNet.String(), cfg.NetBaseURL, cfg.NetToken, clientOpts...)

	comSource := upstream.NewWpSource(models.OriginCom, comClient, cfg.FetchLimit)
	netSource := upstream.NewWpSource(models.OriginNet, netClient, cfg.FetchLimit)
	blogs := upstream.NewBlogStore(netClient, cfg.FetchLimit)

	store, closeStore, err := openSummaryStore(cfg, logger, wipe)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := server.NewHub(logger)
	runner := migration.NewRunner(comSource, netSource, blogs, store,
		migration.WithLogger(logger),
		migration.WithMetrics(collector),
		migration.WithConcurrency(cfg.MigrationConcurrency),
		migration.WithObserver(hub.Publish),
	)
	jobs := migration.NewJobManager(runner, logger)

	api := server.New([]server.WpPager{comSource, netSource}, blogs, runner,
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithHub(hub),
		server.WithJobs(jobs),
		server.WithDefaultLimit(cfg.DefaultLimit),
	)

	ln, port, err := server.Listen("", cfg.Port, cfg.FallbackPorts, logger)
	if err != nil {
		return err
	}

	info := server.NewPortInfo(port, time.Now())
	if cfg.PortFile != "" {
		if err := server.WritePortFile(cfg.PortFile, info); err != nil {
			logger.Warn("failed to write port file", "path", cfg.PortFile, "error", err)
		} else {
			logger.Info("port file written", "path", cfg.PortFile)
		}
	}

	httpServer := &http.Server{
		Handler:      api.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("poesy blog API listening", "url", info.URL, "summary_store", cfg.SummaryStore)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	logger.Info("shutting down server...")
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openSummaryStore returns the configured summary store and a close func.
func openSummaryStore(cfg config.Config, logger *slog.Logger, wipe bool) (migration.SummaryStore, func(), error) {
	if cfg.SummaryStore != config.StoreSurrealDB {
		return migration.NewMemoryStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to surrealdb: %w", err)
	}
	closeClient := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Error("failed to close surrealdb", "error", err)
		}
	}

	if err := client.InitSchema(ctx); err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("initialize schema: %w", err)
	}
	if wipe {
		if err := client.WipeData(ctx); err != nil {
			closeClient()
			return nil, nil, fmt.Errorf("wipe migration runs: %w", err)
		}
		logger.Warn("stored migration runs wiped")
	}

	return db.NewSummaryStore(client), closeClient, nil
}
