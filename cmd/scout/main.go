package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/assareh/fragrance-scout/internal/blob"
	"github.com/assareh/fragrance-scout/internal/classifier"
	"github.com/assareh/fragrance-scout/internal/collector"
	"github.com/assareh/fragrance-scout/internal/config"
	"github.com/assareh/fragrance-scout/internal/dashboard"
	"github.com/assareh/fragrance-scout/internal/scout"
	"github.com/assareh/fragrance-scout/internal/store"
)

func main() {
	godotenv.Load()
	cfg := config.Load("")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()

	blobStore, err := blob.New(ctx, cfg.Storage.Bucket, cfg.Storage.Dir)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	coll, err := collector.New(cfg.Collector, logger.With("component", "collector"))
	if err != nil {
		logger.Error("collector init failed", "error", err)
		os.Exit(1)
	}
	logger.Info("collector initialized", "mode", cfg.Collector.Mode)

	cls, err := classifier.New(cfg.Classifier, logger.With("component", "classifier"))
	if err != nil {
		logger.Error("classifier init failed", "error", err)
		os.Exit(1)
	}
	logger.Info("classifier initialized", "backend", cfg.Classifier.Backend)

	// One scan at a time. Each cycle loads a fresh ledger and result store so
	// anything written out of band (or by a previous cycle) is picked up.
	var scanMu sync.Mutex
	runScan := func() {
		scanMu.Lock()
		defer scanMu.Unlock()

		ledger := store.NewLedger(blobStore, cfg.Storage.LedgerKey)
		if err := ledger.Load(ctx); err != nil {
			logger.Error("scan aborted", "error", err)
			return
		}
		results := store.NewResults(blobStore, cfg.Storage.ResultsKey)
		if err := results.Load(ctx); err != nil {
			logger.Error("scan aborted", "error", err)
			return
		}

		s := scout.New(coll, cls, ledger, results, scout.Options{
			Subreddits:  cfg.Feeds.Subreddits,
			FetchLimit:  cfg.Feeds.FetchLimit,
			AcceptDelay: cfg.Feeds.AcceptDelay.Std(),
			FeedDelay:   cfg.Feeds.FeedDelay.Std(),
		}, logger.With("component", "scout"))

		found, err := s.RunOnce(ctx)
		if err != nil {
			logger.Error("scan interrupted", "error", err, "found", found)
			return
		}
	}

	go runScan()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Feeds.Schedule, runScan); err != nil {
		logger.Error("invalid scan schedule", "schedule", cfg.Feeds.Schedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("scheduler started", "schedule", cfg.Feeds.Schedule)

	server := dashboard.NewServer(cfg, blobStore, runScan, logger.With("component", "dashboard"))
	if err := server.Run(cfg.Addr()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
