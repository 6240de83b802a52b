package domain

import (
	"time"
)

// CustomerFeatures is one customer-level row of the engineered feature
// table consumed by churn modeling.
type CustomerFeatures struct {
	CustomerID int64 `json:"customer_id" csv:"customer_id" validate:"required"`

	// RFM metrics over the observation window.
	Recency       int     `json:"recency" csv:"recency" validate:"min=0"`
	Frequency     int     `json:"frequency" csv:"frequency" validate:"min=1"`
	MonetaryNet   float64 `json:"monetary_net" csv:"monetary_net"`
	MonetaryGross float64 `json:"monetary_gross" csv:"monetary_gross" validate:"min=0"`

	// Behavioral metrics.
	AvgItemsPerBasket       float64   `json:"avg_items_per_basket" csv:"avg_items_per_basket"`
	AvgUnitsPerLine         float64   `json:"avg_units_per_line" csv:"avg_units_per_line"`
	UniqueProducts          int       `json:"unique_products" csv:"unique_products"`
	FirstPurchase           time.Time `json:"first_purchase_date" csv:"first_purchase_date"`
	LastPurchase            time.Time `json:"last_purchase_date" csv:"last_purchase_date"`
	DaysAsCustomer          int       `json:"days_as_customer" csv:"days_as_customer"`
	PurchaseVelocity        float64   `json:"purchase_velocity" csv:"purchase_velocity"`
	AvgDaysBetweenPurchases float64   `json:"avg_days_between_purchases" csv:"avg_days_between_purchases"`

	// Return behavior.
	NReturnInvoices int     `json:"n_return_invoices" csv:"n_return_invoices"`
	ReturnAmount    float64 `json:"return_amount" csv:"return_amount" validate:"min=0"`
	ReturnRate      float64 `json:"return_rate" csv:"return_rate" validate:"min=0,max=1"`
	HasReturns      bool    `json:"has_returns" csv:"has_returns"`

	// Target label: 1 when the customer made no new purchase in the
	// outcome window, 0 otherwise.
	Churned int `json:"churned" csv:"churned" validate:"min=0,max=1"`
}

// FeatureSet is the complete engineered feature table for one run.
type FeatureSet struct {
	Customers   []CustomerFeatures `json:"customers"`
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
}
