// Command cleaner runs the transaction cleaning pipeline: it loads the
// raw retail workbook, applies the cleaning stages in order, prints a
// data quality report, and writes the cleaned CSV plus a binary snapshot
// for the feature engineering step.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"retailetl/internal/cleaning"
	"retailetl/internal/config"
	"retailetl/internal/exporter"
	"retailetl/internal/infrastructure"
	"retailetl/internal/loader"
	"retailetl/internal/validation"
	"retailetl/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, defaults apply)")
	workbook := flag.String("workbook", "", "override the source workbook path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *workbook != "" {
		cfg.Dataset.WorkbookFile = *workbook
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

	logger.InfoContext(ctx, "starting cleaning run",
		slog.String("run_id", runID),
		slog.String("workbook", cfg.Dataset.WorkbookFile),
		slog.Any("sheets", cfg.Dataset.Sheets))

	fileValidator := validation.NewFileValidator(logger)
	if err := fileValidator.ValidateWorkbookFile(cfg.Dataset.WorkbookFile); err != nil {
		logger.ErrorContext(ctx, "workbook validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := fileValidator.ValidateOutputDirectory(cfg.Paths.InterimDir); err != nil {
		logger.ErrorContext(ctx, "output directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	records, _, err := loader.New(logger).Load(ctx, cfg.Dataset.WorkbookFile, cfg.Dataset.Sheets)
	if err != nil {
		logger.ErrorContext(ctx, "workbook load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Raw-data observability before cleaning; findings are logged, never
	// fatal.
	cleaning.ValidateNoNegatives(logger, records, cleaning.QuantityField, 0)
	cleaning.ValidateNoNegatives(logger, records, cleaning.PriceField, 0)

	pipeline := cleaning.New(cfg, logger)
	cleaned, stages := pipeline.Run(ctx, records)
	for _, stage := range stages {
		logger.InfoContext(ctx, "stage complete",
			slog.String("stage", stage.Stage),
			slog.Int("before", stage.Before),
			slog.Int("after", stage.After),
			slog.Int("removed", stage.Removed))
	}

	if err := pipeline.Verify(cleaned); err != nil {
		logger.ErrorContext(ctx, "cleaned data failed invariant verification", slog.String("error", err.Error()))
		os.Exit(1)
	}

	report := cleaning.Summarize(cleaned, runID)
	fmt.Print(report.Format())

	if err := exporter.NewTransactionExporter(logger).ExportCleaned(cleaned, cfg.Paths.CleanedCSVPath()); err != nil {
		logger.ErrorContext(ctx, "cleaned CSV export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dataset := &domain.CleanedDataset{
		Records:     cleaned,
		RunID:       runID,
		SourceFile:  cfg.Dataset.WorkbookFile,
		GeneratedAt: time.Now().UTC(),
	}
	if err := exporter.WriteSnapshot(dataset, cfg.Paths.SnapshotPath()); err != nil {
		logger.ErrorContext(ctx, "snapshot write failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "cleaning run complete",
		slog.String("run_id", runID),
		slog.Int("rows_in", len(records)),
		slog.Int("rows_out", len(cleaned)),
		slog.String("cleaned_csv", cfg.Paths.CleanedCSVPath()),
		slog.String("snapshot", cfg.Paths.SnapshotPath()))
}
