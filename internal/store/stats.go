package store

import (
	"context"
	"fmt"

	"github.com/tinchoocaltana1/becacnc/internal/models"
)

type DashboardCounts struct {
	TotalOrders    int                        `json:"total_orders"`
	TotalProducts  int                        `json:"total_products"`
	OrdersByStatus map[models.OrderStatus]int `json:"orders_by_status"`
}

func (s *Store) GetDashboardCounts(ctx context.Context) (*DashboardCounts, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	counts := &DashboardCounts{
		OrdersByStatus: map[models.OrderStatus]int{
			models.StatusPending:   0,
			models.StatusCompleted: 0,
		},
	}

	// 1. Total Orders
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&counts.TotalOrders); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	// 2. Total Products
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&counts.TotalProducts); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	// 3. Orders by Status
	rows, err := s.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts.OrdersByStatus[models.OrderStatus(status)] = n
	}
	return counts, rows.Err()
}
