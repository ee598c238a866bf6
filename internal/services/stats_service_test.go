package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchoocaltana1/becacnc/internal/apperr"
	"github.com/tinchoocaltana1/becacnc/internal/models"
)

func newStatsService(f *fakeStore) *StatsService {
	svc := NewStatsService(f, time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func addOrder(f *fakeStore, created time.Time, price, cost string, status models.OrderStatus, qty int) {
	id := f.id()
	f.orders[id] = &models.Order{
		ID:         id,
		ClientName: "Cliente",
		CreatedAt:  created,
		Status:     status,
		TotalPrice: decimal.RequireFromString(price),
		TotalCost:  decimal.RequireFromString(cost),
	}
	pid := f.id()
	f.products[pid] = &models.Product{ID: pid, OrderID: id, Quantity: qty}
}

func TestStatsService_Monthly(t *testing.T) {
	f := newFakeStore()
	addOrder(f, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), "1000", "600", models.StatusPending, 4)
	addOrder(f, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), "500", "300", models.StatusCompleted, 1)

	m, err := newStatsService(f).Monthly(context.Background())
	require.NoError(t, err)

	assertDecimal(t, "1000", m.Income.Current)
	assertDecimal(t, "500", m.Income.Previous)
	assertDecimal(t, "100", m.Income.ChangePercent.Decimal)
	assert.Equal(t, 0, m.CompletedOrders.Current)
	assert.Equal(t, 1, m.CompletedOrders.Previous)
	assert.Equal(t, 5, m.ProductsSold)
	assert.Equal(t, 4, m.ProductsSoldInMonth)
}

func TestStatsService_Weekly(t *testing.T) {
	f := newFakeStore()
	addOrder(f, fixedNow.Add(-2*24*time.Hour), "300", "100", models.StatusPending, 1)

	w, err := newStatsService(f).Weekly(context.Background())
	require.NoError(t, err)

	assertDecimal(t, "300", w.Income.Current)
	assert.False(t, w.Income.HasPrior)
}

func TestStatsService_Dashboard(t *testing.T) {
	f := newFakeStore()
	addOrder(f, fixedNow, "300", "100", models.StatusPending, 1)
	addOrder(f, fixedNow, "300", "100", models.StatusCompleted, 1)

	d, err := newStatsService(f).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, d.Counts.TotalOrders)
	assert.Equal(t, 1, d.Counts.OrdersByStatus[models.StatusCompleted])
	assert.Equal(t, 2, d.Month.Current.Orders)
	assert.True(t, fixedNow.Equal(d.GeneratedAt))
}

func TestStatsService_StoreFailure(t *testing.T) {
	f := newFakeStore()
	f.err = errors.New("boom")

	_, err := newStatsService(f).Report(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
