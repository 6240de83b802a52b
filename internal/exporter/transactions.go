package exporter

import (
	"fmt"
	"log/slog"

	"retailetl/pkg/contracts/domain"
)

// transactionHeaders is the fixed column order of the cleaned CSV.
var transactionHeaders = []string{
	"invoice", "stock_code", "description", "quantity", "invoice_date",
	"price", "customer_id", "country", "total_amount", "is_return",
	"year", "month", "day", "hour", "day_of_week", "invoice_date_only",
}

// TransactionExporter writes cleaned transaction data to CSV.
type TransactionExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewTransactionExporter creates a cleaned-data exporter.
func NewTransactionExporter(logger *slog.Logger) *TransactionExporter {
	return &TransactionExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    logger,
	}
}

// ExportCleaned streams the cleaned records to a CSV file in their
// pipeline order. No BOM is written; the file feeds analysis tools, not
// Excel.
func (e *TransactionExporter) ExportCleaned(records []domain.TransactionRecord, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, transactionHeaders)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for i := range records {
		if err := stream.WriteRecord(recordToCSVRow(&records[i])); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}

	e.logger.Info("cleaned data exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(records)))
	return nil
}

// recordToCSVRow converts a cleaned record to a CSV row
func recordToCSVRow(r *domain.TransactionRecord) []string {
	customerID := ""
	if r.HasCustomer() {
		customerID = formatInt(r.CustomerIDValue())
	}
	return []string{
		r.Invoice,
		r.StockCode,
		r.Description,
		formatInt(r.Quantity),
		formatTimestamp(r.InvoiceDate),
		formatNumber(r.Price),
		customerID,
		r.Country,
		formatNumber(r.TotalAmount),
		formatBool(r.IsReturn),
		formatInt(int64(r.Year)),
		formatInt(int64(r.Month)),
		formatInt(int64(r.Day)),
		formatInt(int64(r.Hour)),
		r.DayOfWeek,
		formatDate(r.InvoiceDateOnly),
	}
}
