package domain

import (
	"time"
)

// DescriptionFallback is substituted when every row in a merged duplicate
// group has an empty description.
const DescriptionFallback = "UNKNOWN"

// TransactionRecord represents a single retail transaction line item,
// either raw (as loaded from the workbook) or cleaned (after the pipeline).
// CustomerID is a pointer because guest and malformed rows carry no
// customer identity; the cleaning pipeline guarantees it is non-nil on
// every record it emits.
type TransactionRecord struct {
	Invoice     string    `json:"invoice" csv:"invoice" validate:"required"`
	StockCode   string    `json:"stock_code" csv:"stock_code" validate:"required"`
	Description string    `json:"description" csv:"description"`
	Quantity    int64     `json:"quantity" csv:"quantity"`
	InvoiceDate time.Time `json:"invoice_date" csv:"invoice_date" validate:"required"`
	Price       float64   `json:"price" csv:"price" validate:"min=0"`
	CustomerID  *int64    `json:"customer_id" csv:"customer_id"`
	Country     string    `json:"country" csv:"country"`

	// Derived fields, populated by the final pipeline stage.
	TotalAmount     float64   `json:"total_amount" csv:"total_amount"`
	IsReturn        bool      `json:"is_return" csv:"is_return"`
	Year            int       `json:"year" csv:"year"`
	Month           int       `json:"month" csv:"month"`
	Day             int       `json:"day" csv:"day"`
	Hour            int       `json:"hour" csv:"hour"`
	DayOfWeek       string    `json:"day_of_week" csv:"day_of_week"`
	InvoiceDateOnly time.Time `json:"invoice_date_only" csv:"invoice_date_only"`
}

// HasCustomer reports whether the record carries a customer identity.
func (r *TransactionRecord) HasCustomer() bool {
	return r.CustomerID != nil
}

// CustomerIDValue returns the customer ID, or 0 when absent.
func (r *TransactionRecord) CustomerIDValue() int64 {
	if r.CustomerID == nil {
		return 0
	}
	return *r.CustomerID
}

// GroupKey identifies the duplicate-aggregation group a record belongs to.
// Exactly one cleaned record exists per key.
type GroupKey struct {
	Invoice    string
	StockCode  string
	CustomerID int64
	HasID      bool
}

// Key returns the record's aggregation group key.
func (r *TransactionRecord) Key() GroupKey {
	k := GroupKey{Invoice: r.Invoice, StockCode: r.StockCode}
	if r.CustomerID != nil {
		k.CustomerID = *r.CustomerID
		k.HasID = true
	}
	return k
}

// CleanedDataset is the pipeline output handed to the reporter and
// exporter. Records are immutable once the dataset is built.
type CleanedDataset struct {
	Records     []TransactionRecord `json:"records"`
	RunID       string              `json:"run_id"`
	SourceFile  string              `json:"source_file"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// StageResult records the outcome of one pipeline stage for auditability.
type StageResult struct {
	Stage   string `json:"stage"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
	Removed int    `json:"removed"`
}
