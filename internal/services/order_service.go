package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tinchoocaltana1/becacnc/internal/apperr"
	"github.com/tinchoocaltana1/becacnc/internal/models"
	"github.com/tinchoocaltana1/becacnc/internal/store"
)

// OrderStore is the persistence the order service needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, products []models.Product) (int64, error)
	ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	CompleteOrder(ctx context.Context, id int64, at time.Time) error
	DeleteOrder(ctx context.Context, id int64) error
	ListProductsByOrder(ctx context.Context, orderID int64) ([]models.Product, error)
	ProductProgress(ctx context.Context) (map[int64]models.Progress, error)
}

// ProductInput is a product line as submitted by a client. Numeric fields
// are kept as text so that every malformed value can be reported.
type ProductInput struct {
	Description string
	Size        string
	Quantity    string
	UnitCost    string
	UnitPrice   string
}

type OrderDetail struct {
	Order                models.Order     `json:"order"`
	Products             []models.Product `json:"products"`
	CompletionPercentage int              `json:"completion_percentage"`
}

type OrderService struct {
	store OrderStore
	now   func() time.Time
}

func NewOrderService(s OrderStore) *OrderService {
	return &OrderService{store: s, now: time.Now}
}

// Create validates the input, computes the totals and stores the order with
// all of its products in one transaction.
func (s *OrderService) Create(ctx context.Context, clientName string, inputs []ProductInput) (int64, error) {
	order, products, err := s.buildOrder(clientName, inputs)
	if err != nil {
		return 0, err
	}

	id, err := s.store.CreateOrder(ctx, order, products)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, apperr.Internal("database timeout", err)
		}
		var createErr *store.CreateError
		if errors.As(err, &createErr) {
			slog.Error("Order creation rolled back", "order_id", createErr.OrderID, "error", createErr.Err)
			return 0, apperr.CreationFailure(createErr.OrderID, err)
		}
		return 0, apperr.Internal("error creating order or products", err)
	}

	slog.Info("Order created", "order_id", id, "products", len(products), "total_price", order.TotalPrice.String())
	return id, nil
}

func (s *OrderService) buildOrder(clientName string, inputs []ProductInput) (*models.Order, []models.Product, error) {
	fields := make(map[string]string)

	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		fields["client_name"] = "client name is required"
	}
	if len(inputs) == 0 {
		fields["products"] = "at least one product is required"
	}

	products := make([]models.Product, 0, len(inputs))
	totalCost := decimal.Zero
	totalPrice := decimal.Zero

	for i, in := range inputs {
		prefix := fmt.Sprintf("products[%d].", i)
		p := models.Product{
			Description: titleCase(in.Description),
			Size:        strings.TrimSpace(in.Size),
		}

		qty, err := strconv.Atoi(strings.TrimSpace(in.Quantity))
		switch {
		case err != nil:
			fields[prefix+"quantity"] = "quantity must be a whole number"
		case qty <= 0:
			fields[prefix+"quantity"] = "quantity must be greater than zero"
		default:
			p.Quantity = qty
		}

		var ok bool
		if p.UnitCost, ok = parseAmount(in.UnitCost); !ok {
			fields[prefix+"unit_cost"] = "unit cost must be a non-negative number"
		}
		if p.UnitPrice, ok = parseAmount(in.UnitPrice); !ok {
			fields[prefix+"unit_price"] = "unit price must be a non-negative number"
		}

		totalCost = totalCost.Add(p.LineCost())
		totalPrice = totalPrice.Add(p.LinePrice())
		products = append(products, p)
	}

	if len(fields) > 0 {
		return nil, nil, apperr.Validation("invalid order data or products", fields)
	}

	order := &models.Order{
		ClientName: titleCase(clientName),
		CreatedAt:  s.now().UTC(),
		Status:     models.StatusPending,
		TotalCost:  totalCost,
		TotalPrice: totalPrice,
	}
	return order, products, nil
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// titleCase trims s and upper-cases the first letter of every word.
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}

// List returns every order with its completion percentage, newest first.
func (s *OrderService) List(ctx context.Context) ([]models.OrderSummary, error) {
	return s.list(ctx, nil)
}

// ListByStatus accepts "pending" or "completed".
func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]models.OrderSummary, error) {
	st, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, apperr.Validation("invalid order status", map[string]string{"status": "must be pending or completed"})
	}
	return s.list(ctx, &st)
}

func (s *OrderService) list(ctx context.Context, status *models.OrderStatus) ([]models.OrderSummary, error) {
	orders, err := s.store.ListOrders(ctx, status)
	if err != nil {
		return nil, translate(err, "order not found", "error fetching orders")
	}
	progress, err := s.store.ProductProgress(ctx)
	if err != nil {
		return nil, translate(err, "order not found", "error fetching orders")
	}

	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		p := progress[o.ID]
		summaries = append(summaries, models.OrderSummary{
			Order:                o,
			CompletionPercentage: CompletionPercentage(p.Done, p.Total),
		})
	}
	return summaries, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, translate(err, "order not found", "error fetching order")
	}
	products, err := s.store.ListProductsByOrder(ctx, id)
	if err != nil {
		return nil, translate(err, "order not found", "error fetching order products")
	}
	if products == nil {
		products = []models.Product{}
	}

	done := 0
	for _, p := range products {
		if p.IsDone {
			done++
		}
	}
	return &OrderDetail{
		Order:                *order,
		Products:             products,
		CompletionPercentage: CompletionPercentage(done, len(products)),
	}, nil
}

// Complete marks the order and all its products done. Repeated calls
// re-stamp completed_at.
func (s *OrderService) Complete(ctx context.Context, id int64) error {
	if err := s.store.CompleteOrder(ctx, id, s.now().UTC()); err != nil {
		return translate(err, "order not found", "error completing order")
	}
	slog.Info("Order completed", "order_id", id)
	return nil
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return translate(err, "order not found", "error deleting order")
	}
	slog.Info("Order deleted", "order_id", id)
	return nil
}

// CompletionPercentage is round(100*done/total) with halves rounded up, 0
// when there are no products.
func CompletionPercentage(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}

// translate maps store errors onto the service taxonomy without exposing
// driver detail in the message.
func translate(err error, notFound, internal string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Internal("database timeout", err)
	default:
		return apperr.Internal(internal, err)
	}
}
