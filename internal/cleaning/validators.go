package cleaning

import (
	"log/slog"
	"sort"

	"retailetl/pkg/contracts/domain"
)

// NumericField selects a numeric value from a record for validation.
// The second return value is false when the field is absent on that row;
// absent values are excluded from violation counts.
type NumericField struct {
	Name  string
	Value func(*domain.TransactionRecord) (float64, bool)
}

// PresenceField reports whether a record is missing a value for the field.
type PresenceField struct {
	Name    string
	Missing func(*domain.TransactionRecord) bool
}

// MissingFieldSummary describes one field's missing-value count.
type MissingFieldSummary struct {
	Field   string
	Count   int
	Percent float64
}

// QuantityField selects the signed line quantity.
var QuantityField = NumericField{
	Name: "quantity",
	Value: func(r *domain.TransactionRecord) (float64, bool) {
		return float64(r.Quantity), true
	},
}

// PriceField selects the unit price.
var PriceField = NumericField{
	Name: "price",
	Value: func(r *domain.TransactionRecord) (float64, bool) {
		return r.Price, true
	},
}

// CustomerIDField selects the customer identifier when present.
var CustomerIDField = NumericField{
	Name: "customer_id",
	Value: func(r *domain.TransactionRecord) (float64, bool) {
		if r.CustomerID == nil {
			return 0, false
		}
		return float64(*r.CustomerID), true
	},
}

// CriticalFields are the columns checked for missing values before the
// missing-customer filter runs.
var CriticalFields = []PresenceField{
	{Name: "customer_id", Missing: func(r *domain.TransactionRecord) bool { return r.CustomerID == nil }},
	{Name: "description", Missing: func(r *domain.TransactionRecord) bool { return r.Description == "" }},
	{Name: "invoice", Missing: func(r *domain.TransactionRecord) bool { return r.Invoice == "" }},
	{Name: "quantity", Missing: func(r *domain.TransactionRecord) bool { return false }},
	{Name: "price", Missing: func(r *domain.TransactionRecord) bool { return false }},
}

// ValidateNoNegatives counts records whose value in the given field is at
// or below threshold. Rows without the field are excluded. The count is
// logged at warning level when non-zero; the input is never mutated and
// the pipeline is never halted.
func ValidateNoNegatives(logger *slog.Logger, records []domain.TransactionRecord, field NumericField, threshold float64) int {
	count := 0
	for i := range records {
		v, ok := field.Value(&records[i])
		if !ok {
			continue
		}
		if v <= threshold {
			count++
		}
	}

	if count > 0 {
		logger.Warn("non-positive values found",
			slog.String("field", field.Name),
			slog.Float64("threshold", threshold),
			slog.Int("count", count))
	}
	return count
}

// ValidateDateRange counts records whose invoice timestamp falls outside
// [minYear, maxYear] inclusive. Zero timestamps are excluded. Same logging
// contract as ValidateNoNegatives.
func ValidateDateRange(logger *slog.Logger, records []domain.TransactionRecord, minYear, maxYear int) int {
	count := 0
	for i := range records {
		if records[i].InvoiceDate.IsZero() {
			continue
		}
		year := records[i].InvoiceDate.Year()
		if year < minYear || year > maxYear {
			count++
		}
	}

	if count > 0 {
		logger.Warn("invoice dates outside expected range",
			slog.Int("min_year", minYear),
			slog.Int("max_year", maxYear),
			slog.Int("count", count))
	}
	return count
}

// ValidateMissingValues counts missing values per field, keeps only fields
// with at least one missing value, and returns them sorted by count
// descending (field name ascending on ties, for determinism). A single
// warning states how many fields had missing values.
func ValidateMissingValues(logger *slog.Logger, records []domain.TransactionRecord, fields []PresenceField) []MissingFieldSummary {
	total := len(records)

	var summaries []MissingFieldSummary
	for _, field := range fields {
		count := 0
		for i := range records {
			if field.Missing(&records[i]) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		summaries = append(summaries, MissingFieldSummary{
			Field:   field.Name,
			Count:   count,
			Percent: pct,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Field < summaries[j].Field
	})

	if len(summaries) > 0 {
		logger.Warn("missing values in critical columns",
			slog.Int("fields_affected", len(summaries)))
		for _, s := range summaries {
			logger.Warn("missing values",
				slog.String("field", s.Field),
				slog.Int("count", s.Count),
				slog.Float64("percent", s.Percent))
		}
	}

	return summaries
}
