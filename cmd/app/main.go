package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gwskins/GWSkins_Go/internal/catalog"
	"github.com/gwskins/GWSkins_Go/internal/config"
	"github.com/gwskins/GWSkins_Go/internal/custody"
	"github.com/gwskins/GWSkins_Go/internal/database"
	"github.com/gwskins/GWSkins_Go/internal/database/postgres"
	"github.com/gwskins/GWSkins_Go/internal/delivery"
	"github.com/gwskins/GWSkins_Go/internal/event"
	"github.com/gwskins/GWSkins_Go/internal/handler"
	"github.com/gwskins/GWSkins_Go/internal/inventory"
	"github.com/gwskins/GWSkins_Go/internal/metrics"
	"github.com/gwskins/GWSkins_Go/internal/server"
	"github.com/gwskins/GWSkins_Go/internal/settlement"
	"github.com/gwskins/GWSkins_Go/internal/steam"
	"github.com/gwskins/GWSkins_Go/internal/user"
)

const shutdownTimeout = 15 * time.Second

// sessionReporter adapts the custody manager to the readiness handler.
type sessionReporter struct {
	manager *custody.Manager
}

func (s sessionReporter) State() string {
	return string(s.manager.State())
}

// @title GW Skins API
// @version 1.0
// @description Skins marketplace settlement and delivery backend
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	if err := database.Migrate(cfg.GetDBConnString()); err != nil {
		slog.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := database.NewPool(context.Background(), cfg.GetDBConnString(), 10, 5*time.Minute, 30*time.Minute)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event bus and metrics
	eventBus := event.NewMemoryBus()
	if err := metrics.NewEventMetricsCollector().Register(eventBus); err != nil {
		slog.Error("Failed to register metrics collector", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	inventoryRepo := postgres.NewInventoryRepository(dbPool)
	settlementRepo := postgres.NewSettlementRepository(dbPool)

	// External platform client and custody session
	platform := steam.NewClient(cfg.PlatformAPIURL, cfg.PlatformEventURL)
	platform.Start(ctx)
	defer platform.Stop()

	custodyMgr := custody.NewManager(platform, custody.Credentials{
		Username:       cfg.BotUsername,
		Password:       cfg.BotPassword,
		SharedSecret:   cfg.BotSharedSecret,
		IdentitySecret: cfg.BotIdentitySecret,
	}, cfg.ConfirmationInterval, eventBus)
	custodyMgr.Start(ctx)
	defer custodyMgr.Stop()

	// Delivery pipeline
	dispatcher := delivery.NewDispatcher(custodyMgr, cfg.DeliveryMessage)
	reconciler := delivery.NewReconciler(settlementRepo, platform, custodyMgr, eventBus)
	reconciler.Start(ctx)
	defer reconciler.Stop()

	// Services
	userService := user.NewService(userRepo)
	catalogService := catalog.NewService(catalogRepo)
	inventoryService := inventory.NewService(inventoryRepo, userRepo)
	settlementService := settlement.NewService(settlementRepo, userRepo, dispatcher, custodyMgr, eventBus, cfg.DispatchRetryCap, cfg.DispatchRetryBackoff)

	handler.InitValidator()

	srv := server.NewServer(cfg.Port, cfg.CORSOrigins, dbPool, sessionReporter{custodyMgr}, userService, catalogService, inventoryService, settlementService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
