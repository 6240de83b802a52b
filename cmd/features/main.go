// Command features builds the customer-level churn feature table from a
// cleaned dataset snapshot produced by the cleaner, prints a feature
// report, and writes the feature CSV for modeling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"retailetl/internal/config"
	"retailetl/internal/exporter"
	"retailetl/internal/features"
	"retailetl/internal/infrastructure"
	"retailetl/internal/validation"
	"retailetl/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, defaults apply)")
	snapshot := flag.String("snapshot", "", "override the cleaned dataset snapshot path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	snapshotPath := cfg.Paths.SnapshotPath()
	if *snapshot != "" {
		snapshotPath = *snapshot
	}

	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("failed to create output directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	runID := infrastructure.NewRunID()
	ctx := infrastructure.WithRunID(context.Background(), runID)

	logger.InfoContext(ctx, "starting feature engineering run",
		slog.String("run_id", runID),
		slog.String("snapshot", snapshotPath))

	fileValidator := validation.NewFileValidator(logger)
	if err := fileValidator.ValidateOutputDirectory(cfg.Paths.ProcessedDir); err != nil {
		logger.ErrorContext(ctx, "output directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dataset, err := loadDataset(ctx, logger, fileValidator, snapshotPath, cfg.Paths.CleanedCSVPath())
	if err != nil {
		logger.ErrorContext(ctx, "cleaned dataset load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "cleaned dataset loaded",
		slog.Int("transactions", len(dataset.Records)),
		slog.String("source_run_id", dataset.RunID),
		slog.String("source_file", dataset.SourceFile))

	set, err := features.New(cfg, logger).Build(ctx, dataset)
	if err != nil {
		logger.ErrorContext(ctx, "feature engineering failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	set.RunID = runID

	report := features.BuildReport(set)
	fmt.Print(report.Format())

	if err := exporter.NewFeatureExporter(logger).ExportFeatures(set, cfg.Paths.FeaturesCSVPath()); err != nil {
		logger.ErrorContext(ctx, "feature table export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "feature engineering run complete",
		slog.String("run_id", runID),
		slog.Int("customers", len(set.Customers)),
		slog.String("features_csv", cfg.Paths.FeaturesCSVPath()))
}

// loadDataset prefers the binary snapshot and falls back to re-parsing
// the cleaned CSV when no snapshot exists.
func loadDataset(ctx context.Context, logger *slog.Logger, fileValidator *validation.FileValidator, snapshotPath, csvPath string) (*domain.CleanedDataset, error) {
	if err := fileValidator.ValidateSnapshotFile(snapshotPath); err == nil {
		return exporter.LoadSnapshot(snapshotPath)
	}

	logger.WarnContext(ctx, "snapshot unavailable, reloading cleaned CSV",
		slog.String("snapshot", snapshotPath),
		slog.String("csv", csvPath))

	records, err := exporter.ReadCleanedCSV(csvPath)
	if err != nil {
		return nil, err
	}
	return &domain.CleanedDataset{Records: records, SourceFile: csvPath}, nil
}
