package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/config"
	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/repository/lock"
	"github.com/mamadbah2/shroomtrack/internal/repository/mongodb"
	"github.com/mamadbah2/shroomtrack/internal/repository/sheets"
	"github.com/mamadbah2/shroomtrack/internal/scheduler"
	"github.com/mamadbah2/shroomtrack/internal/server/handlers"
	"github.com/mamadbah2/shroomtrack/internal/server/router"
	"github.com/mamadbah2/shroomtrack/internal/service/crm"
	"github.com/mamadbah2/shroomtrack/internal/service/finance"
	"github.com/mamadbah2/shroomtrack/internal/service/inventory"
	"github.com/mamadbah2/shroomtrack/internal/service/legacysync"
	"github.com/mamadbah2/shroomtrack/internal/service/processing"
	"github.com/mamadbah2/shroomtrack/internal/service/procurement"
	"github.com/mamadbah2/shroomtrack/internal/service/recipes"
	"github.com/mamadbah2/shroomtrack/internal/service/reporting"
	"github.com/mamadbah2/shroomtrack/internal/service/roles"
	"github.com/mamadbah2/shroomtrack/internal/service/sales"
	"github.com/mamadbah2/shroomtrack/pkg/clients/whatsapp"
	"github.com/mamadbah2/shroomtrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New("shroomtrack", cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	table := newTableStore(ctx, cfg, baseLogger)
	locker, closeLocker := newLocker(ctx, cfg, baseLogger)
	defer closeLocker()

	var sender whatsapp.Sender = whatsapp.Disabled{}
	if cfg.WhatsApp.Enabled() {
		sender = whatsapp.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp delivery enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, outreach and weekly report disabled")
	}

	rates := finance.NewRateStore(mongoRepo, models.Rates{
		LaborRate:       cfg.Finance.DefaultLaborRate,
		RawMaterialRate: cfg.Finance.DefaultRawRate,
	}, logger.Named(baseLogger, "svc.rates"))

	syncSvc := legacysync.NewService(table, locker, cfg.Sync.LockName, cfg.Sync.LockTimeout, logger.Named(baseLogger, "svc.sync"))
	processingSvc := processing.NewService(mongoRepo, mongoRepo, mongoRepo, rates, logger.Named(baseLogger, "svc.processing"))
	recipeSvc := recipes.NewService(mongoRepo, logger.Named(baseLogger, "svc.recipes"))
	salesSvc := sales.NewService(mongoRepo, mongoRepo, logger.Named(baseLogger, "svc.sales"))
	financeSvc := finance.NewService(mongoRepo, salesSvc, rates, logger.Named(baseLogger, "svc.finance"))
	crmSvc := crm.NewService(mongoRepo, salesSvc, sender, logger.Named(baseLogger, "svc.crm"))
	procurementSvc := procurement.NewService(mongoRepo, logger.Named(baseLogger, "svc.procurement"))
	inventorySvc := inventory.NewService(mongoRepo, logger.Named(baseLogger, "svc.inventory"))
	roleSvc := roles.NewService(mongoRepo, logger.Named(baseLogger, "svc.roles"))
	reportingSvc := reporting.NewService(mongoRepo, salesSvc, rates, financeSvc, logger.Named(baseLogger, "svc.reporting"))

	engine := router.New(router.Handlers{
		Sync:        handlers.NewSyncHandler(syncSvc, logger.Named(baseLogger, "handlers.sync")),
		Batches:     handlers.NewBatchHandler(processingSvc, logger.Named(baseLogger, "handlers.batches")),
		Recipes:     handlers.NewRecipeHandler(recipeSvc, logger.Named(baseLogger, "handlers.recipes")),
		Finance:     handlers.NewFinanceHandler(financeSvc, logger.Named(baseLogger, "handlers.finance")),
		CRM:         handlers.NewCRMHandler(crmSvc, logger.Named(baseLogger, "handlers.crm")),
		Sales:       handlers.NewSalesHandler(salesSvc, logger.Named(baseLogger, "handlers.sales")),
		Procurement: handlers.NewProcurementHandler(procurementSvc, logger.Named(baseLogger, "handlers.procurement")),
		Inventory:   handlers.NewInventoryHandler(inventorySvc, logger.Named(baseLogger, "handlers.inventory")),
		Dashboard:   handlers.NewDashboardHandler(roleSvc, reportingSvc, logger.Named(baseLogger, "handlers.dashboard")),
	}, logger.Named(baseLogger, "router"))

	monitor := processing.NewMonitor(processingSvc, time.Second, logger.Named(baseLogger, "svc.monitor"))
	go monitor.Run(ctx)

	jobs := scheduler.Jobs{Summary: reportingSvc}
	if cfg.Sheets.Enabled() {
		jobs.Mirror = syncSvc
		jobs.Snapshot = mongoRepo
	}
	if cfg.WhatsApp.Enabled() {
		jobs.Sender = sender
	}
	sched, err := scheduler.NewScheduler(*cfg, jobs, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newTableStore selects the Google spreadsheet when configured, otherwise an
// in-memory table store.
func newTableStore(ctx context.Context, cfg *config.Config, base *zap.Logger) sheets.Repository {
	if !cfg.Sheets.Enabled() {
		base.Warn("google sheets not configured, using in-memory table store")
		return sheets.NewMemoryRepository()
	}
	repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(base, "repo.sheets"))
	if err != nil {
		base.Fatal("failed to init sheets repository", zap.Error(err))
	}
	return repo
}

// newLocker returns the Redis sync lock when REDIS_ADDR is set, otherwise a
// process-local lock.
func newLocker(ctx context.Context, cfg *config.Config, base *zap.Logger) (lock.Locker, func()) {
	if cfg.Redis.Addr == "" {
		base.Info("redis not configured, using process-local sync lock")
		return lock.NewLocalLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		base.Fatal("failed to reach redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	base.Info("redis sync lock enabled", zap.String("addr", cfg.Redis.Addr))

	return lock.NewRedisLocker(client, cfg.Sync.LockTTL), func() {
		if err := client.Close(); err != nil {
			base.Error("failed to close redis client", zap.Error(err))
		}
	}
}
