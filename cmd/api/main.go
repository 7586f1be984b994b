package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"sheetdash/internal/config"
	"sheetdash/internal/database"
	"sheetdash/internal/database/migration"
	handlers "sheetdash/internal/http/handler"
	"sheetdash/internal/http/middleware"
	"sheetdash/internal/logging"
	"sheetdash/internal/metrics"
	"sheetdash/internal/narrator"
	"sheetdash/internal/otel"
	"sheetdash/internal/repository/postgres"
	"sheetdash/internal/service"
	"sheetdash/internal/storage"
)

// @title Sheetdash API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logging.Setup(os.Stdout, cfg.Location())

	if err := run(cfg); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Database.Name),
	)
	ingestMetrics, err := metrics.NewPrometheus(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	uploadRepo := postgres.NewUploadPostgres(db)
	accountRepo := postgres.NewAccountPostgres(db)

	uploadSvc := service.NewUploadService(objStore, uploadRepo, accountRepo, ingestMetrics)
	deps := handlers.Deps{
		DB:             db,
		Gatherer:       reg,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Uploads:        uploadSvc,
		Insights:       service.NewInsightService(uploadSvc, narrator.NewClient(cfg.Narrator)),
		Dashboard:      service.NewDashboardService(uploadRepo, cfg.Upload.RecentLimit, cfg.Upload.TrendDays),
		Accounts:       service.NewAccountService(accountRepo, uploadRepo, uploadSvc),
		Admin:          service.NewAdminService(accountRepo, uploadRepo, uploadSvc),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart framing needs headroom over the file limit.
		BodyLimit: int(cfg.Upload.MaxBytes) + 1<<20,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, deps)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		slog.Info("server_listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	return app.ShutdownWithTimeout(10 * time.Second)
}
