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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/metrics"
	"github.com/gagesampsonn/barbershop/internal/repository/mongodb"
	"github.com/gagesampsonn/barbershop/internal/repository/postgres"
	"github.com/gagesampsonn/barbershop/internal/repository/sheets"
	"github.com/gagesampsonn/barbershop/internal/scheduler"
	"github.com/gagesampsonn/barbershop/internal/server/handlers"
	"github.com/gagesampsonn/barbershop/internal/server/middleware"
	"github.com/gagesampsonn/barbershop/internal/server/router"
	catalogsvc "github.com/gagesampsonn/barbershop/internal/service/catalog"
	hourssvc "github.com/gagesampsonn/barbershop/internal/service/hours"
	notifysvc "github.com/gagesampsonn/barbershop/internal/service/notify"
	reportingsvc "github.com/gagesampsonn/barbershop/internal/service/reporting"
	"github.com/gagesampsonn/barbershop/internal/telemetry"
	"github.com/gagesampsonn/barbershop/pkg/clients/square"
	whatsappclient "github.com/gagesampsonn/barbershop/pkg/clients/whatsapp"
	"github.com/gagesampsonn/barbershop/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	decimal.MarshalJSONWithoutQuotes = true
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Telemetry, baseLogger.Named("telemetry"))
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			baseLogger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	loc, err := cfg.Business.Location()
	if err != nil {
		baseLogger.Fatal("invalid business timezone", zap.Error(err))
	}

	// Schedule and catalog. Without a database the public site serves defaults.
	var (
		hoursRepo   hourssvc.Repository
		catalogRepo catalogsvc.Repository
	)
	if cfg.Database.Enabled() {
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			baseLogger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		store := postgres.NewStore(pool, baseLogger.Named("repo.postgres"))
		if cfg.Database.AutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				baseLogger.Fatal("failed to apply schema", zap.Error(err))
			}
		}
		hoursRepo, catalogRepo = store, store
	} else {
		baseLogger.Warn("database url missing, serving default hours and services")
	}

	hoursSvc := hourssvc.NewService(hoursRepo, loc, baseLogger.Named("svc.hours"))
	catalogSvc := catalogsvc.NewService(catalogRepo, baseLogger.Named("svc.catalog"))

	// Sales reporting.
	var source reportingsvc.PaymentSource
	if cfg.Square.Enabled() {
		source = reportingsvc.NewSquareSource(square.NewClient(cfg.Square, baseLogger.Named("client.square")))
	} else {
		baseLogger.Warn("square access token missing, reports disabled")
	}

	reportOpts := []reportingsvc.Option{reportingsvc.WithFanOut(cfg.Reporting.FanOutLimit)}
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			baseLogger.Warn("redis unreachable, summary cache disabled", zap.Error(err))
		} else {
			reportOpts = append(reportOpts, reportingsvc.WithCache(reportingsvc.NewRedisCache(redisClient, cfg.Redis.TTL)))
		}
	}
	reportingSvc := reportingsvc.NewService(source, loc, baseLogger.Named("svc.reporting"), reportOpts...)

	// Owner notifications.
	var sender whatsappclient.Sender
	if cfg.WhatsApp.Enabled() {
		sender = whatsappclient.NewClient(cfg.WhatsApp)
	}
	notifier := notifysvc.NewNotifier(cfg.WhatsApp, sender, baseLogger.Named("svc.notify"))

	// Nightly snapshot sinks.
	schedOpts := []scheduler.Option{scheduler.WithNotifier(notifier)}
	var archive handlers.SnapshotArchive
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		schedOpts = append(schedOpts, scheduler.WithSnapshotStore(mongoRepo))
		archive = mongoRepo
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		schedOpts = append(schedOpts, scheduler.WithSnapshotSheet(sheetsRepo))
	}

	if reportingSvc.Configured() {
		sched := scheduler.NewScheduler(cfg.Reporting, loc, reportingSvc, baseLogger.Named("scheduler"), schedOpts...)
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	if err := handlers.RegisterValidators(); err != nil {
		baseLogger.Fatal("failed to register request validators", zap.Error(err))
	}
	engine := router.New(router.Handlers{
		Hours:     handlers.NewHoursHandler(hoursSvc, baseLogger.Named("handlers.hours")),
		Catalog:   handlers.NewCatalogHandler(catalogSvc, baseLogger.Named("handlers.catalog")),
		Reports:   handlers.NewReportsHandler(reportingSvc, notifier, cfg.Reporting, baseLogger.Named("handlers.reports")),
		Snapshots: handlers.NewSnapshotsHandler(archive, loc, baseLogger.Named("handlers.snapshots")),
	}, middleware.NewAuthenticator(cfg.Auth, baseLogger.Named("auth")), cfg.Server, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(engine, "barbershop"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
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
