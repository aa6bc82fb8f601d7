package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thanhng/coinfolio-backend/internal/api"
	"github.com/thanhng/coinfolio-backend/internal/config"
	"github.com/thanhng/coinfolio-backend/internal/db"
	"github.com/thanhng/coinfolio-backend/internal/external"
	"github.com/thanhng/coinfolio-backend/internal/ledger"
	"github.com/thanhng/coinfolio-backend/internal/notifications"
	"github.com/thanhng/coinfolio-backend/internal/portfolio"
	"github.com/thanhng/coinfolio-backend/internal/repository"
	"github.com/thanhng/coinfolio-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║        Coinfolio Backend v0.3        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	if err := repository.EnsureSchema(context.Background(), pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Schema setup failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	assetRepo := repository.NewAssetRepo(pool)
	txRepo := repository.NewTransactionRepo(pool)
	p2pRepo := repository.NewP2PRepo(pool)
	snapRepo := repository.NewSnapshotRepo(pool)

	// External market data clients (TTL-cached)
	prices := external.NewCoinGeckoClient(external.CoinGeckoOptions{
		CacheTTL: time.Duration(cfg.PriceCacheTTLMinutes) * time.Minute,
		ExtraIDs: cfg.CoinGeckoIDs,
	})
	rates := external.NewExchangeRateClient(time.Duration(cfg.RateCacheTTLMinutes) * time.Minute)

	// Core services
	recorder := ledger.NewRecorder(assetRepo, txRepo, p2pRepo)
	aggregator := portfolio.NewAggregator(assetRepo, txRepo, prices, rates)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.AppName)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Snapshot scheduler
	snapSched := scheduler.NewSnapshotScheduler(aggregator, snapRepo, notify, scheduler.SnapshotSchedulerConfig{
		Interval:   time.Duration(cfg.SnapshotIntervalHours) * time.Hour,
		RunOnStart: cfg.SnapshotOnBoot,
	})
	snapSched.Start()

	// 2. API server
	srv := api.NewServer(api.Deps{
		Recorder:     recorder,
		Aggregator:   aggregator,
		Assets:       assetRepo,
		Transactions: txRepo,
		P2P:          p2pRepo,
		Snapshots:    snapRepo,
		Snapshotter:  snapSched,
		Pinger:       pool,
	}, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	snapSched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
