package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. AvailableToday only gates whether the
// product can be added to new orders; historical orders keep their own
// snapshots and are unaffected by edits or deletions here.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	AvailableToday bool            `json:"availableToday"`
}

// PaymentStatus cycles between pending and a concrete method. Selecting
// the currently active method again clears it back to pending.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentCash     PaymentStatus = "cash"
	PaymentTransfer PaymentStatus = "transfer"
)

// Method reports whether s is a concrete payment method (not pending).
func (s PaymentStatus) Method() bool {
	return s == PaymentCash || s == PaymentTransfer
}

// OrderItem is a snapshot of a product at order time: name and price are
// copied, not referenced, so ProductID may dangle once the catalog
// entry is edited or deleted.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns Quantity * UnitPrice for this line.
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is a customer's set of requested items at a point in time.
// Total is computed once at creation from the item snapshots.
type Order struct {
	ID             string          `json:"id"`
	CustomerName   string          `json:"customerName"`
	CreatedAt      time.Time       `json:"createdAt"`
	Items          []OrderItem     `json:"items"`
	Total          decimal.Decimal `json:"total"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	DeliveryStatus bool            `json:"deliveryStatus"`
}
