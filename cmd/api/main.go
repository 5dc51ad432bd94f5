package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/owaste/rewards-service/internal/api/http"
	"github.com/owaste/rewards-service/internal/api/http/handlers"
	"github.com/owaste/rewards-service/internal/auth"
	"github.com/owaste/rewards-service/internal/catalog"
	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/events"
	"github.com/owaste/rewards-service/internal/gateway"
	"github.com/owaste/rewards-service/internal/observability"
	"github.com/owaste/rewards-service/internal/persistence"
	"github.com/owaste/rewards-service/internal/repository"
	"github.com/owaste/rewards-service/internal/scan"
	"github.com/owaste/rewards-service/internal/service"
	"github.com/owaste/rewards-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo   repository.UserRepository
		ledgerRepo repository.LedgerRepository
		sessions   repository.SessionStore
		locks      repository.RedemptionLock
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		ledgerRepo = repository.NewLedgerRepository(pg.PoolHandle())
	} else {
		mem := repository.NewMemoryStore()
		userRepo, ledgerRepo = mem, mem
	}
	if redis.Enabled() {
		sessions = repository.NewRedisSessionStore(redis.Client)
		locks = repository.NewRedisRedemptionLock(redis.Client)
	} else {
		sessions = repository.NewMemorySessionStore()
		locks = repository.NewMemoryRedemptionLock()
	}

	cat := catalog.Default()
	if cfg.Catalog.File != "" {
		if cat, err = catalog.LoadFile(cfg.Catalog.File); err != nil {
			logger.Fatal("failed to load catalog", zap.String("file", cfg.Catalog.File), zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, sessions, logger, cfg.Notification)

	scanService := service.NewScanService(cfg.Scan, cfg.Challenge, service.ScanDependencies{
		LedgerRepo: ledgerRepo,
		Sessions:   sessions,
		Resolver:   scan.NewRandomResolver(cat.WasteTypes()),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	navigationService := service.NewNavigationService(sessions, scanService, logger)
	scanService.SetReturnHandler(navigationService.ReturnHome)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Navigation: navigationService,
	})

	simulated := &gateway.Simulated{
		PayoutDelay:  cfg.Wallet.ConvertDelay(),
		FulfillDelay: cfg.Wallet.RedeemDelay(),
		Logger:       logger,
	}
	walletService, err := service.NewWalletService(cfg.Wallet, service.WalletDependencies{
		UserRepo:   userRepo,
		LedgerRepo: ledgerRepo,
		Catalog:    cat,
		Locks:      locks,
		Payments:   simulated,
		Fulfiller:  simulated,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init wallet", zap.Error(err))
	}
	historyService := service.NewHistoryService(ledgerRepo, cat)
	homeService := service.NewHomeService(cfg.Challenge, userRepo, ledgerRepo, sessions)

	if cfg.App.SeedDemoData {
		seedDemo(ctx, cfg.Auth, userRepo, ledgerRepo, logger)
	}

	workersDone := worker.Start(ctx, notificationService, scanService, logger)

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Session:        handlers.NewSessionHandler(navigationService),
		Catalog:        handlers.NewCatalogHandler(cat),
		Scan:           handlers.NewScanHandler(scanService),
		Wallet:         handlers.NewWalletHandler(walletService),
		History:        handlers.NewHistoryHandler(historyService),
		Home:           handlers.NewHomeHandler(homeService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	<-workersDone
}

func seedDemo(ctx context.Context, cfg config.AuthConfig, users repository.UserRepository, ledger repository.LedgerRepository, logger *zap.Logger) {
	hash, err := auth.HashPassword(repository.DemoPassword, cfg.BcryptCost)
	if err != nil {
		logger.Fatal("hash demo password", zap.Error(err))
	}
	user, err := repository.SeedDemo(ctx, users, ledger, hash)
	if err != nil {
		logger.Fatal("seed demo data", zap.Error(err))
	}
	logger.Info("demo account ready", zap.String("email", user.Email), zap.Int("points", user.Points))
}
