package features

import (
	"time"

	"retailetl/pkg/contracts/domain"
)

// CohortStats breaks down how the eligibility filter partitioned the
// observed customers.
type CohortStats struct {
	Total           int `json:"total"`
	Eligible        int `json:"eligible"`
	FilteredOut     int `json:"filtered_out"`
	TenureFailed    int `json:"tenure_failed"`
	FrequencyFailed int `json:"frequency_failed"`
	BothFailed      int `json:"both_failed"`
}

type cohortCandidate struct {
	firstPurchase time.Time
	invoices      map[string]struct{}
}

// eligibleCustomers applies the hybrid cohort criteria to the
// observation window. A customer qualifies only when the first purchase
// is at least minTenureDays before the observation end (enough time for
// repeat behavior to show) and the customer has at least minFrequency
// distinct invoices (filters out one-off buyers).
func eligibleCustomers(observation []domain.TransactionRecord, observationEnd time.Time, minTenureDays, minFrequency int) (map[int64]bool, CohortStats) {
	candidates := make(map[int64]*cohortCandidate)
	for i := range observation {
		r := &observation[i]
		id := r.CustomerIDValue()
		c, ok := candidates[id]
		if !ok {
			c = &cohortCandidate{
				firstPurchase: r.InvoiceDate,
				invoices:      make(map[string]struct{}),
			}
			candidates[id] = c
		}
		if r.InvoiceDate.Before(c.firstPurchase) {
			c.firstPurchase = r.InvoiceDate
		}
		c.invoices[r.Invoice] = struct{}{}
	}

	minAcquisition := observationEnd.AddDate(0, 0, -minTenureDays)

	eligible := make(map[int64]bool)
	stats := CohortStats{Total: len(candidates)}
	for id, c := range candidates {
		tenureOK := !c.firstPurchase.After(minAcquisition)
		frequencyOK := len(c.invoices) >= minFrequency

		switch {
		case tenureOK && frequencyOK:
			eligible[id] = true
			stats.Eligible++
		case !tenureOK && !frequencyOK:
			stats.TenureFailed++
			stats.FrequencyFailed++
			stats.BothFailed++
		case !tenureOK:
			stats.TenureFailed++
		default:
			stats.FrequencyFailed++
		}
	}
	stats.FilteredOut = stats.Total - stats.Eligible

	return eligible, stats
}
