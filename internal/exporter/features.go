package exporter

import (
	"fmt"
	"log/slog"

	"retailetl/pkg/contracts/domain"
)

// featureHeaders is the fixed column order of the feature table CSV.
var featureHeaders = []string{
	"customer_id", "recency", "frequency", "monetary_net", "monetary_gross",
	"avg_items_per_basket", "avg_units_per_line", "unique_products",
	"first_purchase_date", "last_purchase_date", "days_as_customer",
	"purchase_velocity", "avg_days_between_purchases",
	"n_return_invoices", "return_amount", "return_rate", "has_returns",
	"churned",
}

// FeatureExporter writes the engineered customer feature table to CSV.
type FeatureExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewFeatureExporter creates a feature table exporter.
func NewFeatureExporter(logger *slog.Logger) *FeatureExporter {
	return &FeatureExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    logger,
	}
}

// ExportFeatures writes the feature table in customer order.
func (e *FeatureExporter) ExportFeatures(set *domain.FeatureSet, outputPath string) error {
	records := make([][]string, 0, len(set.Customers))
	for i := range set.Customers {
		records = append(records, featuresToCSVRow(&set.Customers[i]))
	}

	err := e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers: featureHeaders,
		Records: records,
	})
	if err != nil {
		return fmt.Errorf("failed to write feature table: %w", err)
	}

	e.logger.Info("feature table exported",
		slog.String("path", outputPath),
		slog.Int("customers", len(set.Customers)),
		slog.String("run_id", set.RunID))
	return nil
}

// featuresToCSVRow converts one customer's features to a CSV row
func featuresToCSVRow(f *domain.CustomerFeatures) []string {
	return []string{
		formatInt(f.CustomerID),
		formatInt(int64(f.Recency)),
		formatInt(int64(f.Frequency)),
		formatNumber(f.MonetaryNet),
		formatNumber(f.MonetaryGross),
		formatNumber(f.AvgItemsPerBasket),
		formatNumber(f.AvgUnitsPerLine),
		formatInt(int64(f.UniqueProducts)),
		formatDate(f.FirstPurchase),
		formatDate(f.LastPurchase),
		formatInt(int64(f.DaysAsCustomer)),
		formatNumber(f.PurchaseVelocity),
		formatNumber(f.AvgDaysBetweenPurchases),
		formatInt(int64(f.NReturnInvoices)),
		formatNumber(f.ReturnAmount),
		formatNumber(f.ReturnRate),
		formatBool(f.HasReturns),
		formatInt(int64(f.Churned)),
	}
}
