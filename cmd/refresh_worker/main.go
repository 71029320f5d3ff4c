package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/finboard/report_engine/internal/amqp"
	"github.com/finboard/report_engine/internal/core/services"
	"github.com/finboard/report_engine/internal/ledgerexport"
	"github.com/finboard/report_engine/internal/metrics"
	"github.com/finboard/report_engine/internal/middleware"
	"github.com/finboard/report_engine/internal/platform/config"
	"github.com/finboard/report_engine/internal/repositories/database/pgsql"
	"github.com/finboard/report_engine/internal/templates"
	"github.com/finboard/report_engine/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("Starting refresh worker")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer amqpClient.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	metricsClient := metrics.NewClient(cfg.MetricsBaseURL)
	exportClient := ledgerexport.NewClient(cfg.LedgerExportBaseURL)
	templateSource := templates.NewDirSource(cfg.TemplateDir)

	importer := services.NewLedgerImportService(repos.LedgerRepo, exportClient)
	digests := services.NewDigestService(
		repos.ReportDataRepo,
		repos.LedgerRepo,
		repos.BudgetRepo,
		repos.ReportRepo,
		metricsClient,
		templateSource,
		importer,
	)
	refresher := services.NewRefreshService(
		repos.ReportRepo,
		repos.ReportDataRepo,
		repos.LedgerRepo,
		repos.BudgetRepo,
		metricsClient,
		digests,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One message at a time; the queue's priority ordering decides what's next.
	go func() {
		err := amqpClient.ConsumeRefreshes(ctx, func(ctx context.Context, msg *amqp.RefreshMessage) error {
			msgLogger := logger.With(
				slog.String("job_id", uuid.NewString()),
				slog.String("report_id", msg.ReportID),
			)
			ctx = middleware.WithLogger(ctx, msgLogger)
			return refresher.RefreshSnapshot(ctx, msg.ReportID, msg.StartDate, msg.EndDate, msg.PeriodType)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", slog.String("error", err.Error()))
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Refresh worker stopped")
}
