package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
)

// ParseOrderStatus accepts only the two known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusCompleted:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type Order struct {
	ID          int64           `json:"order_id"`
	ClientName  string          `json:"client_name"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at"`
	Status      OrderStatus     `json:"status"`
	TotalCost   decimal.Decimal `json:"total_cost"`  // frozen at creation
	TotalPrice  decimal.Decimal `json:"total_price"` // frozen at creation
}

// MarkCompleted moves status and completed_at together.
func (o *Order) MarkCompleted(at time.Time) {
	o.Status = StatusCompleted
	o.CompletedAt = &at
}

func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// Profit is total price minus total cost.
func (o *Order) Profit() decimal.Decimal {
	return o.TotalPrice.Sub(o.TotalCost)
}

// OrderSummary is an order enriched for listings.
type OrderSummary struct {
	Order
	CompletionPercentage int `json:"completion_percentage"`
}

type Product struct {
	ID          int64           `json:"product_id"`
	OrderID     int64           `json:"order_id"`
	Description string          `json:"description"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsDone      bool            `json:"is_done"`
}

func (p *Product) LineCost() decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p *Product) LinePrice() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Progress counts an order's products and how many of them are done.
type Progress struct {
	Total int
	Done  int
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash
}
