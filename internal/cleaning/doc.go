// Package cleaning implements the transformation core of the retail
// cleaning pipeline: report-only validators, the ordered stage sequence
// (chronological sort, administrative-code filter, price filter, duplicate
// aggregation, zero-quantity filter, missing-customer filter, derived-field
// computation), and the quality summary computed over the final dataset.
//
// Stage order is load-bearing. The price filter must run before duplicate
// aggregation so invalid prices never enter the weighted average, and the
// weighted average itself must be computed from per-row quantities before
// the group quantity is summed. See Pipeline.stages for the canonical
// ordering.
package cleaning
