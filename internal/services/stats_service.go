package services

import (
	"context"
	"time"

	"github.com/tinchoocaltana1/becacnc/internal/models"
	"github.com/tinchoocaltana1/becacnc/internal/stats"
	"github.com/tinchoocaltana1/becacnc/internal/store"
)

type StatsStore interface {
	ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetDashboardCounts(ctx context.Context) (*store.DashboardCounts, error)
}

type Dashboard struct {
	Counts store.DashboardCounts `json:"counts"`
	stats.Report
}

// StatsService loads the full order and product collections and hands them
// to the stats engine. Calendar months are evaluated in loc.
type StatsService struct {
	store StatsStore
	loc   *time.Location
	now   func() time.Time
}

func NewStatsService(s StatsStore, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{store: s, loc: loc, now: time.Now}
}

func (s *StatsService) Report(ctx context.Context) (stats.Report, error) {
	orders, err := s.store.ListOrders(ctx, nil)
	if err != nil {
		return stats.Report{}, translate(err, "orders not found", "error fetching orders")
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return stats.Report{}, translate(err, "products not found", "error fetching products")
	}
	return stats.Build(s.now().In(s.loc), orders, products), nil
}

func (s *StatsService) Monthly(ctx context.Context) (stats.MonthReport, error) {
	r, err := s.Report(ctx)
	return r.Month, err
}

func (s *StatsService) Weekly(ctx context.Context) (stats.WeekReport, error) {
	r, err := s.Report(ctx)
	return r.Week, err
}

func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.store.GetDashboardCounts(ctx)
	if err != nil {
		return nil, translate(err, "dashboard not found", "error fetching dashboard stats")
	}
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Counts: *counts, Report: report}, nil
}
