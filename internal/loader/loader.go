package loader

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "retailetl/internal/errors"
	"retailetl/pkg/contracts/domain"
)

// Column keys used in the header map.
const (
	colInvoice     = "invoice"
	colStockCode   = "stock_code"
	colDescription = "description"
	colQuantity    = "quantity"
	colInvoiceDate = "invoice_date"
	colPrice       = "price"
	colCustomerID  = "customer_id"
	colCountry     = "country"
)

// requiredColumns must all be present in a sheet's header row.
var requiredColumns = []string{
	colInvoice, colStockCode, colQuantity, colInvoiceDate, colPrice,
}

// timestampLayouts are tried in order for textual invoice dates. Cells
// stored as Excel serial numbers are handled separately.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
}

// SheetStats records per-sheet ingestion counts.
type SheetStats struct {
	Sheet   string
	Rows    int
	Skipped int
}

// LoadStats summarizes a workbook load across all sheets.
type LoadStats struct {
	Sheets       []SheetStats
	TotalRows    int
	TotalSkipped int
}

// Loader reads transaction rows from a multi-sheet Excel workbook.
type Loader struct {
	logger *slog.Logger
}

// New creates a workbook loader.
func New(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads every configured sheet from the workbook and concatenates
// the rows in sheet order. Row order within a sheet is preserved.
func (l *Loader) Load(ctx context.Context, workbookPath string, sheets []string) ([]domain.TransactionRecord, *LoadStats, error) {
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, nil, apperrors.NewParsingError("open workbook", err).
			WithContext("path", workbookPath)
	}
	defer f.Close()

	var records []domain.TransactionRecord
	stats := &LoadStats{}

	for _, sheet := range sheets {
		sheetRecords, sheetStats, err := l.loadSheet(f, sheet)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, sheetRecords...)
		stats.Sheets = append(stats.Sheets, *sheetStats)
		stats.TotalRows += sheetStats.Rows
		stats.TotalSkipped += sheetStats.Skipped

		l.logger.InfoContext(ctx, "sheet loaded",
			slog.String("sheet", sheet),
			slog.Int("rows", sheetStats.Rows),
			slog.Int("skipped_empty", sheetStats.Skipped))
	}

	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("path", workbookPath),
		slog.Int("sheets", len(sheets)),
		slog.Int("total_rows", stats.TotalRows))

	return records, stats, nil
}

func (l *Loader) loadSheet(f *excelize.File, sheet string) ([]domain.TransactionRecord, *SheetStats, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, apperrors.NewParsingError("read sheet", err).
			WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, nil, apperrors.NewParsingError("sheet is empty", nil).
			WithContext("sheet", sheet)
	}

	columns, err := mapHeader(sheet, rows[0])
	if err != nil {
		return nil, nil, err
	}

	stats := &SheetStats{Sheet: sheet}
	records := make([]domain.TransactionRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		// Header is row 1 in the workbook, so data starts at row 2.
		rowNum := i + 2
		if isEmptyRow(row) {
			stats.Skipped++
			continue
		}

		record, err := parseRow(sheet, rowNum, row, columns)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	stats.Rows = len(records)
	return records, stats, nil
}

// mapHeader resolves column positions by header name. Header spelling in
// the source workbook varies across releases ("Customer ID" vs
// "CustomerID", "Price" vs "UnitPrice"), so names are normalized before
// matching.
func mapHeader(sheet string, header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, cell := range header {
		switch normalizeHeader(cell) {
		case "invoice", "invoiceno":
			columns[colInvoice] = i
		case "stockcode":
			columns[colStockCode] = i
		case "description":
			columns[colDescription] = i
		case "quantity":
			columns[colQuantity] = i
		case "invoicedate":
			columns[colInvoiceDate] = i
		case "price", "unitprice":
			columns[colPrice] = i
		case "customerid":
			columns[colCustomerID] = i
		case "country":
			columns[colCountry] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, apperrors.NewParsingError("required column missing from header", nil).
				WithContext("sheet", sheet).
				WithContext("column", col)
		}
	}
	return columns, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(sheet string, rowNum int, row []string, columns map[string]int) (domain.TransactionRecord, error) {
	cell := func(col string) string {
		if idx, ok := columns[col]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
	rowErr := func(msg string, cause error, col string) *apperrors.AppError {
		return apperrors.NewParsingError(msg, cause).
			WithContext("sheet", sheet).
			WithContext("row", rowNum).
			WithContext("column", col)
	}

	quantity, err := parseInt(cell(colQuantity))
	if err != nil {
		return domain.TransactionRecord{}, rowErr("unparseable quantity", err, colQuantity)
	}

	price, err := parseFloat(cell(colPrice))
	if err != nil {
		return domain.TransactionRecord{}, rowErr("unparseable price", err, colPrice)
	}

	invoiceDate, err := parseTimestamp(cell(colInvoiceDate))
	if err != nil {
		return domain.TransactionRecord{}, rowErr("unparseable invoice date", err, colInvoiceDate)
	}

	record := domain.TransactionRecord{
		Invoice:     cell(colInvoice),
		StockCode:   cell(colStockCode),
		Description: cell(colDescription),
		Quantity:    quantity,
		InvoiceDate: invoiceDate,
		Price:       price,
		Country:     cell(colCountry),
	}

	// A blank customer cell means the transaction has no known customer.
	// Anything non-blank must parse.
	if raw := cell(colCustomerID); raw != "" {
		id, err := parseInt(raw)
		if err != nil {
			return domain.TransactionRecord{}, rowErr("unparseable customer id", err, colCustomerID)
		}
		record.CustomerID = &id
	}

	return record, nil
}

// parseInt accepts plain integers plus the spreadsheet artifacts that
// show up for integer columns: thousands separators and a trailing ".0"
// fraction on numeric cells.
func parseInt(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	v := int64(f)
	if float64(v) != f {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// parseTimestamp handles both textual dates and raw Excel serial
// numbers, which is what GetRows yields when a date cell carries the
// General format.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, lastErr
}
