package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetauctiongo/internal/audit"
	"fleetauctiongo/internal/config"
	"fleetauctiongo/internal/database/db_client"
	"fleetauctiongo/internal/database/migrations"
	"fleetauctiongo/internal/http/http_server"
	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/redis/redis_client"
	"fleetauctiongo/internal/redis/watcher/deadlinewatcher"
	"fleetauctiongo/internal/registry"
	"fleetauctiongo/internal/services/auction"
	"fleetauctiongo/internal/services/bidledger"
	"fleetauctiongo/internal/services/disposal"
	"fleetauctiongo/internal/store"
	"fleetauctiongo/internal/ws"

	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis: auction timers, audit stream, live-event fan-out
	redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. Record store + vehicle registry
	var (
		recordStore store.Store
		vehicles    registry.VehicleRegistry
	)
	switch cfg.StoreDriver {
	case "memory":
		Log.Warn("memory store driver selected; state will not survive a restart")
		recordStore = store.NewMemStore()
		vehicles = registry.NewStaticRegistry(demoVehicles()...)
	default:
		pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort,
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			Log.Fatal("pg-open", zap.Error(err))
		}
		defer pgDb.Close()
		if err := migrations.Up(pgDb); err != nil {
			Log.Fatal("pg-migrate", zap.Error(err))
		}
		recordStore = store.NewPostgresStore(pgDb)
		vehicles = registry.NewPostgresRegistry(pgDb)

		// Background: mirror the audit stream into Postgres
		audit.RunArchiver(ctx, redisClient, pgDb)
	}

	// 5. Audit sink + domain services
	sink := audit.NewRedisSink(redisClient)
	minDuration := time.Duration(cfg.AuctionMinDurationDays) * 24 * time.Hour
	disposalSvc := disposal.NewDisposalService(recordStore, vehicles, sink)
	auctionSvc := auction.NewAuctionService(recordStore, sink, redisClient, minDuration)
	ledger := bidledger.NewBidLedger(recordStore, sink, cfg.BidMinIncrement)

	// 6. Background: timer-expiry watcher drives activation and end-of-life settlement
	go deadlinewatcher.Run(ctx, redisClient, auctionSvc)

	// 7. WebSockets hub + Redis fan-out
	hub := ws.NewHub()
	go ws.SubscribeAuctionEvents(ctx, redisClient, hub)
	wsSrv := ws.NewWsServer(hub, auctionSvc)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv,
		disposalSvc, auctionSvc, ledger)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}

// demoVehicles seeds the static registry used by the memory driver.
func demoVehicles() []models.Vehicle {
	return []models.Vehicle{
		{ID: "veh-001", VIN: "1FTSW21P34ED12345", Make: "Ford", Model: "F-250", Year: 2014, Status: "active"},
		{ID: "veh-002", VIN: "1GCHK23U05F812346", Make: "Chevrolet", Model: "Silverado", Year: 2016, Status: "active"},
		{ID: "veh-003", VIN: "3C6TD5HT8CG123457", Make: "Ram", Model: "2500", Year: 2012, Status: "active"},
	}
}
