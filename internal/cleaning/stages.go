package cleaning

import (
	"log/slog"
	"sort"
	"time"

	"retailetl/pkg/contracts/domain"
)

// adminCodes are stock codes representing non-product transactions
// (postage, fees, adjustments). Rows carrying them are dropped.
var adminCodes = map[string]struct{}{
	"POST":         {},
	"D":            {},
	"M":            {},
	"BANK CHARGES": {},
	"AMAZONFEE":    {},
	"DOT":          {},
	"CRUK":         {},
	"C2":           {},
	"S":            {},
}

// dayNames maps the fixed 1=Sunday through 7=Saturday convention to day
// names. Derived from this table only, never from locale.
var dayNames = [8]string{
	1: "Sunday",
	2: "Monday",
	3: "Tuesday",
	4: "Wednesday",
	5: "Thursday",
	6: "Friday",
	7: "Saturday",
}

// DayOfWeekName returns the day name for t under the 1=Sunday convention.
func DayOfWeekName(t time.Time) string {
	return dayNames[int(t.Weekday())+1]
}

// IsAdministrativeCode reports whether a stock code denotes an
// administrative (non-product) transaction: a member of the fixed admin
// set, a single uppercase letter, or any code shorter than five
// characters.
func IsAdministrativeCode(code string) bool {
	if _, ok := adminCodes[code]; ok {
		return true
	}
	if len(code) == 1 && code[0] >= 'A' && code[0] <= 'Z' {
		return true
	}
	return len(code) < 5
}

// sortChronological stable-sorts records by (customer_id, stock_code,
// invoice_date) ascending. Records without a customer ID sort first.
// Establishes the deterministic basis for every later "first occurrence"
// selection.
func (p *Pipeline) sortChronological(records []domain.TransactionRecord) []domain.TransactionRecord {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if a.HasCustomer() != b.HasCustomer() {
			return !a.HasCustomer()
		}
		if a.HasCustomer() && a.CustomerIDValue() != b.CustomerIDValue() {
			return a.CustomerIDValue() < b.CustomerIDValue()
		}
		if a.StockCode != b.StockCode {
			return a.StockCode < b.StockCode
		}
		return a.InvoiceDate.Before(b.InvoiceDate)
	})
	return records
}

// filterAdminCodes drops administrative-code rows.
func (p *Pipeline) filterAdminCodes(records []domain.TransactionRecord) []domain.TransactionRecord {
	kept := records[:0]
	for i := range records {
		if IsAdministrativeCode(records[i].StockCode) {
			continue
		}
		kept = append(kept, records[i])
	}
	return kept
}

// filterLowPrices drops rows priced below the configured minimum unit
// price. Runs before aggregation so invalid prices never contaminate the
// weighted average.
func (p *Pipeline) filterLowPrices(records []domain.TransactionRecord) []domain.TransactionRecord {
	kept := records[:0]
	for i := range records {
		if records[i].Price < p.minUnitPrice {
			continue
		}
		kept = append(kept, records[i])
	}
	return kept
}

// groupValues holds one aggregation group's untouched per-row values.
// All aggregates are derived from this structure before anything is
// assigned to the output record, so no aggregate's computation can
// corrupt the input of another.
type groupValues struct {
	first      domain.TransactionRecord
	quantities []int64
	prices     []float64
	descs      []string
}

// filterDuplicates merges rows sharing (invoice, stock_code, customer_id)
// into a single record per group:
//
//   - price: quantity-magnitude-weighted average over the group's
//     original per-row values. Computed strictly before the aggregate
//     quantity, which would otherwise overwrite the weights.
//   - quantity: signed sum of per-row quantities.
//   - description: first non-empty value in sort order, else "UNKNOWN".
//   - invoice_date, country: first value in sort order.
//
// Output preserves first-occurrence group order.
func (p *Pipeline) filterDuplicates(records []domain.TransactionRecord) []domain.TransactionRecord {
	groups := make(map[domain.GroupKey]*groupValues)
	var order []domain.GroupKey

	for i := range records {
		key := records[i].Key()
		g, ok := groups[key]
		if !ok {
			g = &groupValues{first: records[i]}
			groups[key] = g
			order = append(order, key)
		}
		g.quantities = append(g.quantities, records[i].Quantity)
		g.prices = append(g.prices, records[i].Price)
		g.descs = append(g.descs, records[i].Description)
	}

	merged := make([]domain.TransactionRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]

		// Weighted average from the raw per-row values. Must be read
		// before the quantity sum below; aggregating quantity first
		// silently corrupts the price.
		var weightSum int64
		var weighted float64
		for i, q := range g.quantities {
			w := q
			if w < 0 {
				w = -w
			}
			weightSum += w
			weighted += float64(w) * g.prices[i]
		}

		var quantity int64
		for _, q := range g.quantities {
			quantity += q
		}

		out := g.first
		out.Quantity = quantity
		if weightSum > 0 {
			out.Price = weighted / float64(weightSum)
		}
		// weightSum == 0 means every row had zero quantity; the record
		// falls to the zero-quantity filter and keeps the first price.

		out.Description = domain.DescriptionFallback
		for _, d := range g.descs {
			if d != "" {
				out.Description = d
				break
			}
		}

		merged = append(merged, out)
	}

	return merged
}

// filterZeroQuantity drops aggregated records whose quantity nets to zero.
// These are pure data-entry errors: purchases and returns of the same
// product live on different invoices and are never merged, so this is not
// netting.
func (p *Pipeline) filterZeroQuantity(records []domain.TransactionRecord) []domain.TransactionRecord {
	kept := records[:0]
	for i := range records {
		if records[i].Quantity == 0 {
			continue
		}
		kept = append(kept, records[i])
	}
	return kept
}

// filterMissingCustomer reports missing values across the critical
// columns, drops rows without a customer identity, then reports (without
// dropping) rows dated outside the configured year range.
func (p *Pipeline) filterMissingCustomer(records []domain.TransactionRecord) []domain.TransactionRecord {
	ValidateMissingValues(p.logger, records, CriticalFields)

	before := len(records)
	kept := records[:0]
	for i := range records {
		if !records[i].HasCustomer() {
			continue
		}
		kept = append(kept, records[i])
	}

	if removed := before - len(kept); removed > 0 && before > 0 {
		p.logger.Info("dropped records without customer identity",
			slog.Int("count", removed),
			slog.Float64("percent", float64(removed)/float64(before)*100))
	}

	ValidateDateRange(p.logger, kept, p.minYear, p.maxYear)

	return kept
}

// computeDerivedFields populates total_amount, is_return, and the
// calendar components on every record.
func (p *Pipeline) computeDerivedFields(records []domain.TransactionRecord) []domain.TransactionRecord {
	for i := range records {
		r := &records[i]
		r.TotalAmount = float64(r.Quantity) * r.Price
		r.IsReturn = r.Quantity < 0
		r.Year = r.InvoiceDate.Year()
		r.Month = int(r.InvoiceDate.Month())
		r.Day = r.InvoiceDate.Day()
		r.Hour = r.InvoiceDate.Hour()
		r.DayOfWeek = DayOfWeekName(r.InvoiceDate)
		r.InvoiceDateOnly = time.Date(
			r.InvoiceDate.Year(), r.InvoiceDate.Month(), r.InvoiceDate.Day(),
			0, 0, 0, 0, r.InvoiceDate.Location())
	}
	return records
}
