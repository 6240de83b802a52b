// Package features turns cleaned transaction data into the
// customer-level feature table used for churn modeling.
//
// Transactions are split into an observation window, from which every
// feature is computed, and a later outcome window, from which only the
// churn label is derived. The windows must not overlap; any overlap
// would leak the label into the features. Customers enter the cohort
// only with enough tenure and repeat purchases to have an established
// relationship, because a one-off buyer who never returned is not
// churning.
package features
