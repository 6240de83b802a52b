package cleaning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailetl/internal/config"
	"retailetl/internal/shared/testutil"
	"retailetl/pkg/contracts/domain"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	logger, _ := testutil.NewCaptureLogger()
	return New(config.WithDefaults(), logger)
}

func TestIsAdministrativeCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"POST", true},
		{"D", true},
		{"M", true},
		{"BANK CHARGES", true},
		{"AMAZONFEE", true},
		{"DOT", true},
		{"CRUK", true},
		{"C2", true},
		{"S", true},
		{"Z", true},     // single uppercase letter
		{"ABC", true},   // shorter than five characters
		{"ABCDE", false},
		{"12345", false},
		{"85123A", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdministrativeCode(tt.code))
		})
	}
}

func TestDayOfWeekName(t *testing.T) {
	// 2011-01-02 was a Sunday.
	base := time.Date(2011, 1, 2, 0, 0, 0, 0, time.UTC)
	want := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

	for i, name := range want {
		assert.Equal(t, name, DayOfWeekName(base.AddDate(0, 0, i)))
	}
}

func TestSortChronological(t *testing.T) {
	p := newTestPipeline(t)
	d1 := time.Date(2010, 3, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2010, 3, 2, 9, 0, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "3", StockCode: "BBBBB", CustomerID: int64Ptr(2), InvoiceDate: d1},
		{Invoice: "1", StockCode: "AAAAA", CustomerID: int64Ptr(1), InvoiceDate: d2},
		{Invoice: "2", StockCode: "AAAAA", CustomerID: int64Ptr(1), InvoiceDate: d1},
		{Invoice: "4", StockCode: "CCCCC", CustomerID: nil, InvoiceDate: d1},
	}

	sorted := p.sortChronological(records)

	// nil customer first, then by (customer, stock, date).
	assert.Equal(t, "4", sorted[0].Invoice)
	assert.Equal(t, "2", sorted[1].Invoice)
	assert.Equal(t, "1", sorted[2].Invoice)
	assert.Equal(t, "3", sorted[3].Invoice)
}

func TestFilterAdminCodes(t *testing.T) {
	p := newTestPipeline(t)
	records := []domain.TransactionRecord{
		{StockCode: "POST"},
		{StockCode: "D"},
		{StockCode: "Z"},
		{StockCode: "ABC"},
		{StockCode: "ABCDE"},
		{StockCode: "85123A"},
	}

	kept := p.filterAdminCodes(records)

	require.Len(t, kept, 2)
	assert.Equal(t, "ABCDE", kept[0].StockCode)
	assert.Equal(t, "85123A", kept[1].StockCode)
}

func TestFilterLowPrices(t *testing.T) {
	p := newTestPipeline(t) // min unit price 0.01
	records := []domain.TransactionRecord{
		{StockCode: "AAAAA", Price: 0.0},
		{StockCode: "BBBBB", Price: 0.005},
		{StockCode: "CCCCC", Price: 0.01},
		{StockCode: "DDDDD", Price: 2.50},
	}

	kept := p.filterLowPrices(records)

	require.Len(t, kept, 2)
	assert.Equal(t, "CCCCC", kept[0].StockCode)
	assert.Equal(t, "DDDDD", kept[1].StockCode)
}

// The canonical regression test for the aggregation ordering rule: the
// weighted average must be computed from per-row quantities before the
// group quantity is summed.
func TestAggregateDuplicatesWeightedAverage(t *testing.T) {
	p := newTestPipeline(t)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "INV1", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: 2, Price: 10.0, InvoiceDate: d, Country: "United Kingdom", Description: "CERAMIC JAR"},
		{Invoice: "INV1", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: 3, Price: 20.0, InvoiceDate: d.Add(time.Minute), Country: "United Kingdom"},
	}

	merged := p.filterDuplicates(records)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(5), merged[0].Quantity)
	assert.InDelta(t, 16.0, merged[0].Price, 1e-9)
	assert.Equal(t, "CERAMIC JAR", merged[0].Description)
	assert.Equal(t, d, merged[0].InvoiceDate)
	assert.Equal(t, "United Kingdom", merged[0].Country)
}

func TestAggregateDuplicatesReturnGroup(t *testing.T) {
	p := newTestPipeline(t)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	// Returns keep their sign; weights use quantity magnitude.
	records := []domain.TransactionRecord{
		{Invoice: "C1001", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: -2, Price: 10.0, InvoiceDate: d},
		{Invoice: "C1001", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: -3, Price: 20.0, InvoiceDate: d},
	}

	merged := p.filterDuplicates(records)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(-5), merged[0].Quantity)
	assert.InDelta(t, 16.0, merged[0].Price, 1e-9)
}

func TestAggregateDuplicatesDescriptionFallback(t *testing.T) {
	p := newTestPipeline(t)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "INV2", StockCode: "FGHIJ", CustomerID: int64Ptr(2), Quantity: 1, Price: 5.0, InvoiceDate: d},
		{Invoice: "INV2", StockCode: "FGHIJ", CustomerID: int64Ptr(2), Quantity: 1, Price: 5.0, InvoiceDate: d},
	}

	merged := p.filterDuplicates(records)

	require.Len(t, merged, 1)
	assert.Equal(t, domain.DescriptionFallback, merged[0].Description)
}

func TestAggregateDuplicatesDistinctGroupsUntouched(t *testing.T) {
	p := newTestPipeline(t)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "INV1", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: 2, Price: 10.0, InvoiceDate: d},
		{Invoice: "INV2", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: 3, Price: 20.0, InvoiceDate: d},
		{Invoice: "INV1", StockCode: "FGHIJ", CustomerID: int64Ptr(1), Quantity: 4, Price: 1.0, InvoiceDate: d},
	}

	merged := p.filterDuplicates(records)

	require.Len(t, merged, 3)
	// First-occurrence group order is preserved.
	assert.Equal(t, "ABCDE", merged[0].StockCode)
	assert.Equal(t, "INV1", merged[0].Invoice)
	assert.Equal(t, "INV2", merged[1].Invoice)
	assert.Equal(t, "FGHIJ", merged[2].StockCode)
}

func TestFilterZeroQuantity(t *testing.T) {
	p := newTestPipeline(t)
	records := []domain.TransactionRecord{
		{Invoice: "1", Quantity: 0},
		{Invoice: "2", Quantity: 5},
		{Invoice: "3", Quantity: -1},
	}

	kept := p.filterZeroQuantity(records)

	require.Len(t, kept, 2)
	assert.Equal(t, "2", kept[0].Invoice)
	assert.Equal(t, "3", kept[1].Invoice)
}

// Purchases and returns of the same product on different invoices must
// remain separate, unnetted records. Documented behavior, easy to "fix"
// accidentally.
func TestZeroQuantityFilterDoesNotNetAcrossInvoices(t *testing.T) {
	p := newTestPipeline(t)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "1001", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: 3, Price: 5.0, InvoiceDate: d},
		{Invoice: "C1002", StockCode: "ABCDE", CustomerID: int64Ptr(1), Quantity: -3, Price: 5.0, InvoiceDate: d.Add(time.Hour)},
	}

	merged := p.filterDuplicates(records)
	require.Len(t, merged, 2)

	kept := p.filterZeroQuantity(merged)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(3), kept[0].Quantity)
	assert.Equal(t, int64(-3), kept[1].Quantity)
}

func TestFilterMissingCustomer(t *testing.T) {
	logger, capture := testutil.NewCaptureLogger()
	p := New(config.WithDefaults(), logger)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "1", CustomerID: int64Ptr(1), InvoiceDate: d},
		{Invoice: "2", CustomerID: nil, InvoiceDate: d},
		{Invoice: "3", CustomerID: int64Ptr(2), InvoiceDate: d},
	}

	kept := p.filterMissingCustomer(records)

	require.Len(t, kept, 2)
	for i := range kept {
		assert.True(t, kept[i].HasCustomer())
	}
	assert.True(t, capture.HasMessage("dropped records without customer identity"))
}

func TestComputeDerivedFields(t *testing.T) {
	p := newTestPipeline(t)
	// 2010-06-04 was a Friday.
	d := time.Date(2010, 6, 4, 14, 45, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "1", Quantity: 3, Price: 2.5, InvoiceDate: d},
		{Invoice: "C2", Quantity: -2, Price: 4.0, InvoiceDate: d},
	}

	out := p.computeDerivedFields(records)

	assert.InDelta(t, 7.5, out[0].TotalAmount, 1e-9)
	assert.False(t, out[0].IsReturn)
	assert.Equal(t, 2010, out[0].Year)
	assert.Equal(t, 6, out[0].Month)
	assert.Equal(t, 4, out[0].Day)
	assert.Equal(t, 14, out[0].Hour)
	assert.Equal(t, "Friday", out[0].DayOfWeek)
	assert.Equal(t, time.Date(2010, 6, 4, 0, 0, 0, 0, time.UTC), out[0].InvoiceDateOnly)

	assert.InDelta(t, -8.0, out[1].TotalAmount, 1e-9)
	assert.True(t, out[1].IsReturn)
}

func TestStageOrderIsFixed(t *testing.T) {
	p := newTestPipeline(t)
	assert.Equal(t, []string{
		"sort_chronological",
		"filter_admin_codes",
		"filter_low_prices",
		"aggregate_duplicates",
		"filter_zero_quantity",
		"filter_missing_customer",
		"compute_derived_fields",
	}, p.StageNames())
}

func TestRunDoesNotMutateInput(t *testing.T) {
	p := newTestPipeline(t)
	d := time.Date(2010, 6, 1, 10, 30, 0, 0, time.UTC)

	records := []domain.TransactionRecord{
		{Invoice: "2", StockCode: "ZZZZZ", CustomerID: int64Ptr(2), Quantity: 1, Price: 1.0, InvoiceDate: d},
		{Invoice: "1", StockCode: "AAAAA", CustomerID: int64Ptr(1), Quantity: 1, Price: 1.0, InvoiceDate: d},
	}

	p.Run(context.Background(), records)

	assert.Equal(t, "2", records[0].Invoice)
	assert.Equal(t, "1", records[1].Invoice)
}
