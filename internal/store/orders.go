package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tinchoocaltana1/becacnc/internal/models"
)

const orderColumns = `order_id, client_name, created_at, completed_at, status, total_cost, total_price`

// CreateError is returned by CreateOrder. OrderID is the id the order row had
// inside the rolled-back transaction, 0 if the order insert itself failed.
type CreateError struct {
	OrderID int64
	Err     error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create order (rolled back id %d): %v", e.OrderID, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(sc rowScanner) (models.Order, error) {
	var o models.Order
	var status string
	var completedAt sql.NullTime
	if err := sc.Scan(&o.ID, &o.ClientName, &o.CreatedAt, &completedAt, &status, &o.TotalCost, &o.TotalPrice); err != nil {
		return o, err
	}
	o.Status = models.OrderStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	return o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateOrder inserts the order and all of its products in one transaction.
// On success order.ID and every product's ID/OrderID are set.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, products []models.Product) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var orderID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.q(`
			INSERT INTO orders (client_name, created_at, completed_at, status, total_cost, total_price)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING order_id
		`), order.ClientName, order.CreatedAt, nullTime(order.CompletedAt), string(order.Status), order.TotalCost, order.TotalPrice).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		insertProduct := s.q(`
			INSERT INTO products (order_id, description, size, quantity, unit_cost, unit_price, is_done)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING product_id
		`)
		for i := range products {
			p := &products[i]
			if err := tx.QueryRowContext(ctx, insertProduct, orderID, p.Description, p.Size, p.Quantity, p.UnitCost, p.UnitPrice, p.IsDone).Scan(&p.ID); err != nil {
				return fmt.Errorf("insert product %d: %w", i, err)
			}
			p.OrderID = orderID
		}
		return nil
	})
	if err != nil {
		return 0, &CreateError{OrderID: orderID, Err: err}
	}

	order.ID = orderID
	return orderID, nil
}

// ListOrders returns every order, newest first. A non-nil status filters.
func (s *Store) ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, order_id DESC`

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, s.q(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &o, nil
}

// CompleteOrder marks the order completed at the given time and every one of
// its products done. Calling it again re-stamps completed_at.
func (s *Store) CompleteOrder(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		// The order row is locked before its products, as in DeleteOrder.
		res, err := tx.ExecContext(ctx, s.q(`UPDATE orders SET status = ?, completed_at = ? WHERE order_id = ?`),
			string(models.StatusCompleted), at, id)
		if err != nil {
			return fmt.Errorf("complete order %d: %w", id, err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, s.q(`UPDATE products SET is_done = ? WHERE order_id = ?`), true, id); err != nil {
			return fmt.Errorf("mark products done for order %d: %w", id, err)
		}
		return nil
	})
}

// DeleteOrder removes the order and then its products. Like CompleteOrder it
// touches the order row first, so the two never wait on each other's locks.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM orders WHERE order_id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete order %d: %w", id, err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		// Normally already gone through ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM products WHERE order_id = ?`), id); err != nil {
			return fmt.Errorf("delete products of order %d: %w", id, err)
		}
		return nil
	})
}
