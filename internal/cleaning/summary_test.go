package cleaning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailetl/pkg/contracts/domain"
)

func summaryFixture() []domain.TransactionRecord {
	d := func(day int) time.Time {
		return time.Date(2010, 6, day, 12, 0, 0, 0, time.UTC)
	}
	return []domain.TransactionRecord{
		{Invoice: "1001", StockCode: "AAAAA", CustomerID: int64Ptr(1), Quantity: 2, Price: 10.0, TotalAmount: 20.0, InvoiceDate: d(1), Country: "United Kingdom"},
		{Invoice: "1002", StockCode: "BBBBB", CustomerID: int64Ptr(2), Quantity: 4, Price: 5.0, TotalAmount: 20.0, InvoiceDate: d(3), Country: "United Kingdom"},
		{Invoice: "C1003", StockCode: "AAAAA", CustomerID: int64Ptr(1), Quantity: -2, Price: 5.0, TotalAmount: -10.0, IsReturn: true, InvoiceDate: d(5), Country: "France"},
	}
}

func TestSummarize(t *testing.T) {
	report := Summarize(summaryFixture(), "run-1")

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 3, report.RowCount)
	assert.Equal(t, 16, report.ColumnCount)

	assert.Equal(t, 2, report.DistinctCustomers)
	assert.Equal(t, 2, report.DistinctProducts)
	assert.Equal(t, 3, report.DistinctInvoices)
	assert.Equal(t, 2, report.DistinctCountries)

	assert.Equal(t, time.Date(2010, 6, 1, 12, 0, 0, 0, time.UTC), report.MinDate)
	assert.Equal(t, time.Date(2010, 6, 5, 12, 0, 0, 0, time.UTC), report.MaxDate)
	assert.Equal(t, 4, report.SpanDays)

	assert.Equal(t, int64(-2), report.QuantityMin)
	assert.Equal(t, int64(4), report.QuantityMax)
	assert.InDelta(t, 4.0/3.0, report.QuantityMean, 1e-9)
	assert.InDelta(t, 5.0, report.PriceMin, 1e-9)
	assert.InDelta(t, 10.0, report.PriceMax, 1e-9)
	assert.InDelta(t, 20.0/3.0, report.PriceMean, 1e-9)
	assert.InDelta(t, 30.0, report.TotalRevenue, 1e-9)
}

// Return accounting: returned revenue is the exact signed sum of
// total_amount over return rows.
func TestSummarizeReturns(t *testing.T) {
	records := summaryFixture()
	records = append(records, domain.TransactionRecord{
		Invoice: "C1004", StockCode: "BBBBB", CustomerID: int64Ptr(2),
		Quantity: -2, Price: 5.0, TotalAmount: -10.0, IsReturn: true,
		InvoiceDate: time.Date(2010, 6, 6, 12, 0, 0, 0, time.UTC), Country: "France",
	})

	report := Summarize(records, "run-2")

	assert.Equal(t, 2, report.ReturnCount)
	assert.InDelta(t, 50.0, report.ReturnPercent, 1e-9)
	assert.InDelta(t, -20.0, report.ReturnedRevenue, 1e-9)

	// Format reports the magnitude.
	assert.Contains(t, report.Format(), "Returned revenue: 20.00")
}

func TestSummarizeTopCountries(t *testing.T) {
	report := Summarize(summaryFixture(), "run-3")

	require.Len(t, report.TopCountries, 2)
	assert.Equal(t, "United Kingdom", report.TopCountries[0].Country)
	assert.Equal(t, 2, report.TopCountries[0].Count)
	assert.InDelta(t, 200.0/3.0, report.TopCountries[0].Percent, 1e-9)
	assert.Equal(t, "France", report.TopCountries[1].Country)
}

func TestSummarizeTopCountriesCapsAtThree(t *testing.T) {
	var records []domain.TransactionRecord
	d := time.Date(2010, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, country := range []string{"A", "B", "C", "D"} {
		records = append(records, domain.TransactionRecord{
			Invoice: string(rune('1' + i)), StockCode: "AAAAA",
			CustomerID: int64Ptr(int64(i)), Quantity: 1, Price: 1.0,
			InvoiceDate: d, Country: country,
		})
	}

	report := Summarize(records, "run-4")
	assert.Len(t, report.TopCountries, 3)
}

func TestSummarizeEmpty(t *testing.T) {
	report := Summarize(nil, "run-5")

	assert.Equal(t, 0, report.RowCount)
	assert.Contains(t, report.Format(), "No records survived cleaning")
}
