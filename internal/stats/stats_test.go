package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchoocaltana1/becacnc/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func order(id int64, created time.Time, price, cost string, status models.OrderStatus) models.Order {
	return models.Order{
		ID:         id,
		ClientName: "Cliente",
		CreatedAt:  created,
		Status:     status,
		TotalPrice: dec(price),
		TotalCost:  dec(cost),
	}
}

func TestBuild_MonthComparison(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order(1, time.Date(2025, 5, 3, 9, 0, 0, 0, time.UTC), "1000", "600", models.StatusPending),
		order(2, time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC), "500", "300", models.StatusCompleted),
	}
	products := []models.Product{
		{OrderID: 1, Quantity: 3},
		{OrderID: 2, Quantity: 2},
	}

	r := Build(now, orders, products)
	m := r.Month

	assert.Equal(t, time.May, m.Month)
	assert.Equal(t, time.April, m.PreviousMonth)

	assertDecimal(t, "1000", m.Income.Current)
	assertDecimal(t, "500", m.Income.Previous)
	require.True(t, m.Income.HasPrior)
	require.True(t, m.Income.ChangePercent.Valid)
	assertDecimal(t, "100", m.Income.ChangePercent.Decimal)
	assert.Equal(t, TrendUp, m.Income.Trend)

	assertDecimal(t, "400", m.Profit.Current)
	assertDecimal(t, "200", m.Profit.Previous)
	assertDecimal(t, "100", m.Profit.ChangePercent.Decimal)
	assert.Equal(t, TrendUp, m.Profit.Trend)

	// cost went from 300 to 600: a 100% worsening
	assertDecimal(t, "-100", m.Cost.ChangePercent.Decimal)
	assert.Equal(t, TrendDown, m.Cost.Trend)

	assert.Equal(t, 0, m.CompletedOrders.Current)
	assert.Equal(t, 1, m.CompletedOrders.Previous)
	assert.Equal(t, -1, m.CompletedOrders.Difference)
	assert.Equal(t, TrendDown, m.CompletedOrders.Trend)

	assert.Equal(t, 1, m.PendingOrders)
	assert.Equal(t, 1, m.Clients.Current)
	assert.Equal(t, 5, m.ProductsSold)
	assert.Equal(t, 3, m.ProductsSoldInMonth)
}

func TestBuild_NoPriorDataLeavesChangeAbsent(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order(1, time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC), "1000", "600", models.StatusPending),
	}

	r := Build(now, orders, nil)

	for _, c := range []MoneyComparison{r.Month.Income, r.Month.Cost, r.Month.Profit, r.Week.Income, r.Week.Cost, r.Week.Profit} {
		assert.False(t, c.HasPrior)
		assert.False(t, c.ChangePercent.Valid)
	}
	assert.False(t, r.Month.CompletedOrders.HasPrior)

	body, err := json.Marshal(r.Month.Income)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"change_percent":null`)
}

func TestBuild_JanuaryComparesWithDecemberOfPreviousYear(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order(1, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "300", "100", models.StatusPending),
		order(2, time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC), "200", "100", models.StatusCompleted),
		order(3, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "999", "1", models.StatusCompleted),
	}

	m := Build(now, orders, nil).Month

	assert.Equal(t, 2025, m.PreviousYear)
	assert.Equal(t, time.December, m.PreviousMonth)
	assertDecimal(t, "200", m.Income.Previous)
	assertDecimal(t, "50", m.Income.ChangePercent.Decimal)
	assert.Equal(t, 1, m.Previous.Orders)
}

func TestBuild_MonthsUseNowLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	// 1 June 01:00 UTC is still 31 May in ART
	orders := []models.Order{
		order(1, time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC), "100", "50", models.StatusPending),
	}

	m := Build(now, orders, nil).Month

	assert.Equal(t, 0, m.Current.Orders)
	assert.Equal(t, 1, m.Previous.Orders)
}

func TestBuild_WeekWindows(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order(1, now, "100", "50", models.StatusCompleted),
		order(2, now.Add(-7*day), "100", "50", models.StatusPending),
		order(3, now.Add(-7*day-time.Minute), "80", "60", models.StatusCompleted),
		order(4, now.Add(-14*day), "20", "10", models.StatusPending),
		order(5, now.Add(-14*day-time.Minute), "5000", "10", models.StatusPending),
	}

	w := Build(now, orders, nil).Week

	assert.Equal(t, 2, w.Current.Orders)
	assert.Equal(t, 2, w.Previous.Orders)
	assertDecimal(t, "200", w.Income.Current)
	assertDecimal(t, "100", w.Income.Previous)
	assertDecimal(t, "100", w.Income.ChangePercent.Decimal)
	assert.Equal(t, TrendUp, w.Income.Trend)

	assertDecimal(t, "100", w.Cost.Current)
	assertDecimal(t, "70", w.Cost.Previous)
	assert.Equal(t, TrendDown, w.Cost.Trend)
	// (70 - 100) / 70 * 100 = -42.857...
	assertDecimal(t, "-42.86", w.Cost.ChangePercent.Decimal)

	assert.Equal(t, 1, w.CompletedOrders.Current)
	assert.Equal(t, 1, w.CompletedOrders.Previous)
	assert.Equal(t, TrendDown, w.CompletedOrders.Trend)
}

func TestBuild_EqualValuesTrendDown(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order(1, now.Add(-day), "100", "50", models.StatusPending),
		order(2, now.Add(-10*day), "100", "50", models.StatusPending),
	}

	w := Build(now, orders, nil).Week

	assert.Equal(t, TrendDown, w.Income.Trend)
	assert.Equal(t, TrendDown, w.Cost.Trend)
	assert.Equal(t, TrendDown, w.Profit.Trend)
	assertDecimal(t, "0", w.Income.ChangePercent.Decimal)
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysAgo(now, now))
	assert.Equal(t, 1, DaysAgo(now, now.Add(-time.Second)))
	assert.Equal(t, 1, DaysAgo(now, now.Add(-day)))
	assert.Equal(t, 2, DaysAgo(now, now.Add(-day-time.Second)))
	assert.Equal(t, 1, DaysAgo(now, now.Add(time.Hour)), "future dates count by distance")
}

func TestCompareGain_RoundsUp(t *testing.T) {
	c := CompareGain(dec("400"), dec("300"))
	// 33.33 -> 34
	assertDecimal(t, "34", c.ChangePercent.Decimal)
	assert.Equal(t, TrendUp, c.Trend)
}

func TestCompareCost_FallingCostIsPositive(t *testing.T) {
	c := CompareCost(dec("150"), dec("200"))
	assertDecimal(t, "25", c.ChangePercent.Decimal)
	assert.Equal(t, TrendUp, c.Trend)
}

func TestCompareCost_IsNotRoundedUp(t *testing.T) {
	c := CompareCost(dec("200"), dec("300"))
	// 33.33, where income and profit would give 34
	assertDecimal(t, "33.33", c.ChangePercent.Decimal)
	assert.Equal(t, TrendUp, c.Trend)

	g := CompareGain(dec("200"), dec("300"))
	assertDecimal(t, "-33", g.ChangePercent.Decimal)
}
