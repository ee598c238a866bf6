package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tinchoocaltana1/becacnc/internal/models"
)

const productColumns = `product_id, order_id, description, size, quantity, unit_cost, unit_price, is_done`

func scanProduct(sc rowScanner) (models.Product, error) {
	var p models.Product
	var isDone sql.NullBool
	if err := sc.Scan(&p.ID, &p.OrderID, &p.Description, &p.Size, &p.Quantity, &p.UnitCost, &p.UnitPrice, &isDone); err != nil {
		return p, err
	}
	p.IsDone = isDone.Valid && isDone.Bool
	return p, nil
}

func (s *Store) listProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.listProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
}

func (s *Store) ListProductsByOrder(ctx context.Context, orderID int64) ([]models.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.listProducts(ctx, `SELECT `+productColumns+` FROM products WHERE order_id = ? ORDER BY product_id`, orderID)
}

// ProductProgress returns product counts per order id. Orders without
// products are absent from the map.
func (s *Store) ProductProgress(ctx context.Context) (map[int64]models.Progress, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT order_id, COUNT(*), COALESCE(SUM(CASE WHEN is_done THEN 1 ELSE 0 END), 0)
		FROM products
		GROUP BY order_id
	`)
	if err != nil {
		return nil, fmt.Errorf("product progress: %w", err)
	}
	defer rows.Close()

	progress := make(map[int64]models.Progress)
	for rows.Next() {
		var orderID int64
		var p models.Progress
		if err := rows.Scan(&orderID, &p.Total, &p.Done); err != nil {
			return nil, fmt.Errorf("scan product progress: %w", err)
		}
		progress[orderID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product progress: %w", err)
	}
	return progress, nil
}

// GetProductDone returns the stored is_done flag; nil when the column is NULL.
func (s *Store) GetProductDone(ctx context.Context, id int64) (*bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var isDone sql.NullBool
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT is_done FROM products WHERE product_id = ?`), id).Scan(&isDone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if !isDone.Valid {
		return nil, nil
	}
	return &isDone.Bool, nil
}

func (s *Store) SetProductDone(ctx context.Context, id int64, done bool) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE products SET is_done = ? WHERE product_id = ?`), done, id)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM products WHERE product_id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
