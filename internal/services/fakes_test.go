package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tinchoocaltana1/becacnc/internal/models"
	"github.com/tinchoocaltana1/becacnc/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store.
type fakeStore struct {
	orders   map[int64]*models.Order
	products map[int64]*models.Product
	nullDone map[int64]bool
	users    map[string]*models.User
	nextID   int64

	failProductAt int // 1-based product index whose insert fails; 0 disables
	err           error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[int64]*models.Order),
		products: make(map[int64]*models.Product),
		nullDone: make(map[int64]bool),
		users:    make(map[string]*models.User),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order, products []models.Product) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	orderID := f.id()
	if f.failProductAt > 0 && f.failProductAt <= len(products) {
		return 0, &store.CreateError{OrderID: orderID, Err: errors.New("constraint failed")}
	}
	o := *order
	o.ID = orderID
	f.orders[orderID] = &o
	for i := range products {
		p := products[i]
		p.ID = f.id()
		p.OrderID = orderID
		f.products[p.ID] = &p
		products[i] = p
	}
	order.ID = orderID
	return orderID, nil
}

func (f *fakeStore) ListOrders(_ context.Context, status *models.OrderStatus) ([]models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Order
	for _, o := range f.orders {
		if status == nil || o.Status == *status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (f *fakeStore) CompleteOrder(_ context.Context, id int64, at time.Time) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.MarkCompleted(at)
	for _, p := range f.products {
		if p.OrderID == id {
			p.IsDone = true
			delete(f.nullDone, p.ID)
		}
	}
	return nil
}

func (f *fakeStore) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := f.orders[id]; !ok {
		return store.ErrNotFound
	}
	for pid, p := range f.products {
		if p.OrderID == id {
			delete(f.products, pid)
		}
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeStore) ListProducts(_ context.Context) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListProductsByOrder(ctx context.Context, orderID int64) ([]models.Product, error) {
	all, err := f.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Product
	for _, p := range all {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ProductProgress(_ context.Context) (map[int64]models.Progress, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]models.Progress)
	for _, p := range f.products {
		pr := out[p.OrderID]
		pr.Total++
		if p.IsDone {
			pr.Done++
		}
		out[p.OrderID] = pr
	}
	return out, nil
}

func (f *fakeStore) GetProductDone(_ context.Context, id int64) (*bool, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if f.nullDone[id] {
		return nil, nil
	}
	done := p.IsDone
	return &done, nil
}

func (f *fakeStore) SetProductDone(_ context.Context, id int64, done bool) error {
	p, ok := f.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.IsDone = done
	delete(f.nullDone, id)
	return nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeStore) GetDashboardCounts(_ context.Context) (*store.DashboardCounts, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := &store.DashboardCounts{
		TotalOrders:    len(f.orders),
		TotalProducts:  len(f.products),
		OrdersByStatus: map[models.OrderStatus]int{models.StatusPending: 0, models.StatusCompleted: 0},
	}
	for _, o := range f.orders {
		counts.OrdersByStatus[o.Status]++
	}
	return counts, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func (f *fakeStore) CreateUser(_ context.Context, username, hashedPassword string) error {
	if _, ok := f.users[username]; ok {
		return errors.New("UNIQUE constraint failed: users.username")
	}
	f.users[username] = &models.User{ID: f.id(), Username: username, Password: hashedPassword}
	return nil
}
