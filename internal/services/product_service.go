package services

import (
	"context"
	"log/slog"

	"github.com/tinchoocaltana1/becacnc/internal/apperr"
	"github.com/tinchoocaltana1/becacnc/internal/models"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByOrder(ctx context.Context, orderID int64) ([]models.Product, error)
	GetProductDone(ctx context.Context, id int64) (*bool, error)
	SetProductDone(ctx context.Context, id int64, done bool) error
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductService reads and mutates single products. Order totals are frozen
// at creation and are never touched here.
type ProductService struct {
	store ProductStore
}

func NewProductService(s ProductStore) *ProductService {
	return &ProductService{store: s}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, translate(err, "product not found", "error fetching products")
	}
	return nonNil(products), nil
}

func (s *ProductService) ListByOrder(ctx context.Context, orderID int64) ([]models.Product, error) {
	if orderID <= 0 {
		return nil, apperr.Validation("invalid order_id", map[string]string{"order_id": "must be a positive integer"})
	}
	products, err := s.store.ListProductsByOrder(ctx, orderID)
	if err != nil {
		return nil, translate(err, "order not found", "error fetching products by order_id")
	}
	return nonNil(products), nil
}

// Toggle flips is_done and returns the new value.
func (s *ProductService) Toggle(ctx context.Context, id int64) (bool, error) {
	current, err := s.store.GetProductDone(ctx, id)
	if err != nil {
		return false, translate(err, "product not found", "error updating product status")
	}
	if current == nil {
		return false, apperr.InvalidState("product status is null or undefined")
	}

	next := !*current
	if err := s.store.SetProductDone(ctx, id, next); err != nil {
		return false, translate(err, "product not found", "error updating product status")
	}
	slog.Info("Product toggled", "product_id", id, "is_done", next)
	return next, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return translate(err, "product not found", "error deleting product")
	}
	slog.Info("Product deleted", "product_id", id)
	return nil
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
