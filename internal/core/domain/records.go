package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical shapes for the raw collections the console pulls from the
// backend. The gateway normalizes the backend's inconsistent field-name
// variants (customer_id / user_id / user_Id, total_amount / amount,
// date / created_at) into these before anything else sees the data.

// Order is a single customer order as reported by the backend.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id,omitempty"`
	Username   string          `json:"username,omitempty"`
	Email      string          `json:"email,omitempty"`
	Status     string          `json:"status,omitempty"`
	Total      decimal.Decimal `json:"total"`
	PlacedAt   *time.Time      `json:"placed_at,omitempty"`
}

// Payment is a single payment record.
type Payment struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id,omitempty"`
	CustomerID string          `json:"customer_id,omitempty"`
	Method     string          `json:"method,omitempty"`
	Status     string          `json:"status,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// Customer is a platform customer account.
type Customer struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
