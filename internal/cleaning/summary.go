package cleaning

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"retailetl/pkg/contracts/domain"
)

// columnCount is the number of columns in the cleaned output table
// (original plus derived).
const columnCount = 16

// CountryCount is one entry of the top-countries breakdown.
type CountryCount struct {
	Country string  `json:"country"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// QualityReport holds the summary statistics computed over the cleaned
// dataset. All values are plain computable aggregates; Format renders
// them as text.
type QualityReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`

	DistinctCustomers int `json:"distinct_customers"`
	DistinctProducts  int `json:"distinct_products"`
	DistinctInvoices  int `json:"distinct_invoices"`
	DistinctCountries int `json:"distinct_countries"`

	MinDate  time.Time `json:"min_date"`
	MaxDate  time.Time `json:"max_date"`
	SpanDays int       `json:"span_days"`

	QuantityMin  int64   `json:"quantity_min"`
	QuantityMax  int64   `json:"quantity_max"`
	QuantityMean float64 `json:"quantity_mean"`
	PriceMin     float64 `json:"price_min"`
	PriceMax     float64 `json:"price_max"`
	PriceMean    float64 `json:"price_mean"`
	TotalRevenue float64 `json:"total_revenue"`

	TopCountries []CountryCount `json:"top_countries"`

	ReturnCount   int     `json:"return_count"`
	ReturnPercent float64 `json:"return_percent"`
	// ReturnedRevenue is the signed sum of total_amount over return rows
	// (negative for real returns). Format reports its magnitude.
	ReturnedRevenue float64 `json:"returned_revenue"`
}

// Summarize computes the quality report for a cleaned dataset.
func Summarize(records []domain.TransactionRecord, runID string) *QualityReport {
	report := &QualityReport{
		RunID:       runID,
		GeneratedAt: time.Now(),
		RowCount:    len(records),
		ColumnCount: columnCount,
	}
	if len(records) == 0 {
		return report
	}

	customers := make(map[int64]struct{})
	products := make(map[string]struct{})
	invoices := make(map[string]struct{})
	countries := make(map[string]int)

	report.QuantityMin = records[0].Quantity
	report.QuantityMax = records[0].Quantity
	report.PriceMin = records[0].Price
	report.PriceMax = records[0].Price
	report.MinDate = records[0].InvoiceDate
	report.MaxDate = records[0].InvoiceDate

	var quantitySum, priceSum float64
	for i := range records {
		r := &records[i]

		if r.CustomerID != nil {
			customers[*r.CustomerID] = struct{}{}
		}
		products[r.StockCode] = struct{}{}
		invoices[r.Invoice] = struct{}{}
		countries[r.Country]++

		if r.Quantity < report.QuantityMin {
			report.QuantityMin = r.Quantity
		}
		if r.Quantity > report.QuantityMax {
			report.QuantityMax = r.Quantity
		}
		if r.Price < report.PriceMin {
			report.PriceMin = r.Price
		}
		if r.Price > report.PriceMax {
			report.PriceMax = r.Price
		}
		if r.InvoiceDate.Before(report.MinDate) {
			report.MinDate = r.InvoiceDate
		}
		if r.InvoiceDate.After(report.MaxDate) {
			report.MaxDate = r.InvoiceDate
		}

		quantitySum += float64(r.Quantity)
		priceSum += r.Price
		report.TotalRevenue += float64(r.Quantity) * r.Price

		if r.IsReturn {
			report.ReturnCount++
			report.ReturnedRevenue += r.TotalAmount
		}
	}

	report.DistinctCustomers = len(customers)
	report.DistinctProducts = len(products)
	report.DistinctInvoices = len(invoices)
	report.DistinctCountries = len(countries)
	report.SpanDays = int(report.MaxDate.Sub(report.MinDate).Hours() / 24)
	report.QuantityMean = quantitySum / float64(len(records))
	report.PriceMean = priceSum / float64(len(records))
	report.ReturnPercent = float64(report.ReturnCount) / float64(len(records)) * 100
	report.TopCountries = topCountries(countries, 3, len(records))

	return report
}

// topCountries returns the n most frequent countries with percentages,
// count descending, name ascending on ties.
func topCountries(counts map[string]int, n, total int) []CountryCount {
	entries := make([]CountryCount, 0, len(counts))
	for country, count := range counts {
		entries = append(entries, CountryCount{
			Country: country,
			Count:   count,
			Percent: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Country < entries[j].Country
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Format renders the report as the human-readable banner emitted to
// stdout and the log.
func (q *QualityReport) Format() string {
	var b strings.Builder
	rule := strings.Repeat("=", 77)

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "DATA QUALITY REPORT  (run %s)\n", q.RunID)
	fmt.Fprintf(&b, "%s\n\n", rule)

	fmt.Fprintf(&b, "Dataset Dimensions: %d rows x %d columns\n\n", q.RowCount, q.ColumnCount)

	if q.RowCount == 0 {
		fmt.Fprintf(&b, "No records survived cleaning.\n%s\n", rule)
		return b.String()
	}

	fmt.Fprintf(&b, "Distinct Entities:\n")
	fmt.Fprintf(&b, "  Customers: %d\n", q.DistinctCustomers)
	fmt.Fprintf(&b, "  Products:  %d\n", q.DistinctProducts)
	fmt.Fprintf(&b, "  Invoices:  %d\n", q.DistinctInvoices)
	fmt.Fprintf(&b, "  Countries: %d\n\n", q.DistinctCountries)

	fmt.Fprintf(&b, "Temporal Coverage:\n")
	fmt.Fprintf(&b, "  From %s to %s (%d days)\n\n",
		q.MinDate.Format("2006-01-02"), q.MaxDate.Format("2006-01-02"), q.SpanDays)

	fmt.Fprintf(&b, "Numeric Summaries:\n")
	fmt.Fprintf(&b, "  Quantity: min=%d, max=%d, mean=%.2f\n", q.QuantityMin, q.QuantityMax, q.QuantityMean)
	fmt.Fprintf(&b, "  Price:    min=%.2f, max=%.2f, mean=%.2f\n", q.PriceMin, q.PriceMax, q.PriceMean)
	fmt.Fprintf(&b, "  Total revenue: %.2f\n\n", q.TotalRevenue)

	if len(q.TopCountries) > 0 {
		fmt.Fprintf(&b, "Top Countries:\n")
		for _, c := range q.TopCountries {
			fmt.Fprintf(&b, "  %-20s %d (%.1f%%)\n", c.Country, c.Count, c.Percent)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "Returns:\n")
	fmt.Fprintf(&b, "  Count: %d (%.1f%%)\n", q.ReturnCount, q.ReturnPercent)
	fmt.Fprintf(&b, "  Returned revenue: %.2f\n", math.Abs(q.ReturnedRevenue))

	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}
