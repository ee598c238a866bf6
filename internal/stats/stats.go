// Package stats computes the monthly and weekly business report from the
// full order and product collections. It performs no I/O.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinchoocaltana1/becacnc/internal/models"
)

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

const (
	day              = 24 * time.Hour
	currentWeekDays  = 7
	previousWeekDays = 14
)

var hundred = decimal.NewFromInt(100)

// Totals is the aggregate of the orders that fall in one window. Clients is
// the number of orders in the window; names are not deduplicated.
type Totals struct {
	Income    decimal.Decimal `json:"income"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	Orders    int             `json:"orders"`
	Completed int             `json:"completed"`
	Pending   int             `json:"pending"`
	Clients   int             `json:"clients"`
}

func (t *Totals) add(o *models.Order) {
	t.Income = t.Income.Add(o.TotalPrice)
	t.Cost = t.Cost.Add(o.TotalCost)
	t.Profit = t.Profit.Add(o.Profit())
	t.Orders++
	t.Clients++
	switch o.Status {
	case models.StatusCompleted:
		t.Completed++
	case models.StatusPending:
		t.Pending++
	}
}

// MoneyComparison compares a money metric with the previous window.
// ChangePercent is null and HasPrior false when the previous value is zero.
type MoneyComparison struct {
	Current       decimal.Decimal     `json:"current"`
	Previous      decimal.Decimal     `json:"previous"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	HasPrior      bool                `json:"has_prior"`
	Trend         Trend               `json:"trend"`
}

// CountComparison compares a count by absolute difference.
type CountComparison struct {
	Current    int   `json:"current"`
	Previous   int   `json:"previous"`
	Difference int   `json:"difference"`
	HasPrior   bool  `json:"has_prior"`
	Trend      Trend `json:"trend"`
}

type MonthReport struct {
	Year            int             `json:"year"`
	Month           time.Month      `json:"month"`
	PreviousYear    int             `json:"previous_year"`
	PreviousMonth   time.Month      `json:"previous_month"`
	Current         Totals          `json:"current"`
	Previous        Totals          `json:"previous"`
	Income          MoneyComparison `json:"income"`
	Cost            MoneyComparison `json:"cost"`
	Profit          MoneyComparison `json:"profit"`
	CompletedOrders CountComparison `json:"completed_orders"`
	Clients         CountComparison `json:"clients"`
	PendingOrders   int             `json:"pending_orders"`
	// ProductsSold is the lifetime quantity over every product.
	ProductsSold        int `json:"products_sold"`
	ProductsSoldInMonth int `json:"products_sold_in_month"`
}

type WeekReport struct {
	Current         Totals          `json:"current"`
	Previous        Totals          `json:"previous"`
	Income          MoneyComparison `json:"income"`
	Cost            MoneyComparison `json:"cost"`
	Profit          MoneyComparison `json:"profit"`
	CompletedOrders CountComparison `json:"completed_orders"`
}

type Report struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Month       MonthReport `json:"month"`
	Week        WeekReport  `json:"week"`
}

// Build buckets every order by created_at relative to now. Calendar months
// are evaluated in now's location.
func Build(now time.Time, orders []models.Order, products []models.Product) Report {
	loc := now.Location()
	year, month, _ := now.Date()
	prevYear, prevMonth, _ := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0).Date()

	var curMonth, prevMonthTotals, curWeek, prevWeek Totals
	inMonth := make(map[int64]bool)

	for i := range orders {
		o := &orders[i]
		y, m, _ := o.CreatedAt.In(loc).Date()

		switch {
		case y == year && m == month:
			curMonth.add(o)
			inMonth[o.ID] = true
		case y == prevYear && m == prevMonth:
			prevMonthTotals.add(o)
		}

		switch days := DaysAgo(now, o.CreatedAt); {
		case days <= currentWeekDays:
			curWeek.add(o)
		case days <= previousWeekDays:
			prevWeek.add(o)
		}
	}

	var sold, soldInMonth int
	for _, p := range products {
		sold += p.Quantity
		if inMonth[p.OrderID] {
			soldInMonth += p.Quantity
		}
	}

	return Report{
		GeneratedAt: now,
		Month: MonthReport{
			Year:                year,
			Month:               month,
			PreviousYear:        prevYear,
			PreviousMonth:       prevMonth,
			Current:             curMonth,
			Previous:            prevMonthTotals,
			Income:              CompareGain(curMonth.Income, prevMonthTotals.Income),
			Cost:                CompareCost(curMonth.Cost, prevMonthTotals.Cost),
			Profit:              CompareGain(curMonth.Profit, prevMonthTotals.Profit),
			CompletedOrders:     CompareCount(curMonth.Completed, prevMonthTotals.Completed),
			Clients:             CompareCount(curMonth.Clients, prevMonthTotals.Clients),
			PendingOrders:       curMonth.Pending,
			ProductsSold:        sold,
			ProductsSoldInMonth: soldInMonth,
		},
		Week: WeekReport{
			Current:         curWeek,
			Previous:        prevWeek,
			Income:          CompareGain(curWeek.Income, prevWeek.Income),
			Cost:            CompareCost(curWeek.Cost, prevWeek.Cost),
			Profit:          CompareGain(curWeek.Profit, prevWeek.Profit),
			CompletedOrders: CompareCount(curWeek.Completed, prevWeek.Completed),
		},
	}
}

// DaysAgo is the absolute distance between now and t in days, rounded up.
func DaysAgo(now, t time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	return int((d + day - 1) / day)
}

// CompareGain compares a metric where higher is better (income, profit).
func CompareGain(current, previous decimal.Decimal) MoneyComparison {
	c := MoneyComparison{Current: current, Previous: previous, Trend: TrendDown}
	if current.GreaterThan(previous) {
		c.Trend = TrendUp
	}
	if !previous.IsZero() {
		c.HasPrior = true
		c.ChangePercent = percent(current.Sub(previous), previous)
	}
	return c
}

// CompareCost compares a metric where lower is better. A falling cost gives
// a positive change and an "up" trend. The change is not rounded up, only
// cut to cents.
func CompareCost(current, previous decimal.Decimal) MoneyComparison {
	c := MoneyComparison{Current: current, Previous: previous, Trend: TrendDown}
	if current.LessThan(previous) {
		c.Trend = TrendUp
	}
	if !previous.IsZero() {
		c.HasPrior = true
		c.ChangePercent = decimal.NewNullDecimal(previous.Sub(current).Mul(hundred).Div(previous).Round(2))
	}
	return c
}

func CompareCount(current, previous int) CountComparison {
	c := CountComparison{
		Current:    current,
		Previous:   previous,
		Difference: current - previous,
		HasPrior:   previous != 0,
		Trend:      TrendDown,
	}
	if current > previous {
		c.Trend = TrendUp
	}
	return c
}

// percent returns ceil(delta / base * 100).
func percent(delta, base decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(delta.Mul(hundred).Div(base).Ceil())
}
