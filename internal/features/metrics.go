package features

import (
	"math"
	"sort"
	"time"

	"retailetl/pkg/contracts/domain"
)

// accumulator collects one customer's raw aggregates in a single pass
// over the observation window.
type accumulator struct {
	invoices       map[string]struct{}
	first, last    time.Time
	net, gross     float64
	products       map[string]struct{}
	posUnits       int64
	posLines       int
	baskets        map[string]int64
	returnInvoices map[string]struct{}
	returnAmount   float64
}

func newAccumulator(first time.Time) *accumulator {
	return &accumulator{
		invoices:       make(map[string]struct{}),
		first:          first,
		last:           first,
		products:       make(map[string]struct{}),
		baskets:        make(map[string]int64),
		returnInvoices: make(map[string]struct{}),
	}
}

func (a *accumulator) add(r *domain.TransactionRecord) {
	a.invoices[r.Invoice] = struct{}{}
	a.products[r.StockCode] = struct{}{}

	if r.InvoiceDate.Before(a.first) {
		a.first = r.InvoiceDate
	}
	if r.InvoiceDate.After(a.last) {
		a.last = r.InvoiceDate
	}

	a.net += r.TotalAmount
	if r.TotalAmount > 0 {
		a.gross += r.TotalAmount
	}

	// Basket metrics only count purchase lines.
	if r.Quantity > 0 {
		a.posUnits += r.Quantity
		a.posLines++
		a.baskets[r.Invoice] += r.Quantity
	}

	if r.IsReturn {
		a.returnInvoices[r.Invoice] = struct{}{}
		a.returnAmount += r.TotalAmount
	}
}

// accumulate groups the observation rows by customer.
func accumulate(observation []domain.TransactionRecord) map[int64]*accumulator {
	byCustomer := make(map[int64]*accumulator)
	for i := range observation {
		r := &observation[i]
		id := r.CustomerIDValue()
		a, ok := byCustomer[id]
		if !ok {
			a = newAccumulator(r.InvoiceDate)
			byCustomer[id] = a
		}
		a.add(r)
	}
	return byCustomer
}

// features derives one customer's feature row from the accumulated
// aggregates. The churned flag is set by the caller from the outcome
// window.
func (a *accumulator) features(customerID int64, observationEnd time.Time) domain.CustomerFeatures {
	frequency := len(a.invoices)
	daysAsCustomer := wholeDays(a.first, a.last)

	f := domain.CustomerFeatures{
		CustomerID:     customerID,
		Recency:        wholeDays(a.last, observationEnd),
		Frequency:      frequency,
		MonetaryNet:    a.net,
		MonetaryGross:  a.gross,
		UniqueProducts: len(a.products),
		FirstPurchase:  a.first,
		LastPurchase:   a.last,
		DaysAsCustomer: daysAsCustomer,
	}

	// Laplace smoothing (+1 day) keeps velocity finite for same-day
	// burst purchasers.
	f.PurchaseVelocity = float64(frequency) / ((float64(daysAsCustomer) + 1) / 30)
	f.AvgDaysBetweenPurchases = (float64(daysAsCustomer) + 1) / float64(frequency)

	if a.posLines > 0 {
		var basketTotal int64
		for _, qty := range a.baskets {
			basketTotal += qty
		}
		f.AvgItemsPerBasket = float64(basketTotal) / float64(len(a.baskets))
		f.AvgUnitsPerLine = float64(a.posUnits) / float64(a.posLines)
	}

	f.NReturnInvoices = len(a.returnInvoices)
	f.ReturnAmount = math.Abs(a.returnAmount)
	f.ReturnRate = float64(f.NReturnInvoices) / float64(frequency)
	f.HasReturns = f.NReturnInvoices > 0

	return f
}

// sortedCustomerIDs returns map keys in ascending order so the output is
// deterministic.
func sortedCustomerIDs(byCustomer map[int64]*accumulator) []int64 {
	ids := make([]int64, 0, len(byCustomer))
	for id := range byCustomer {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// wholeDays returns the number of complete days between two instants.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
