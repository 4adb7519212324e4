package phase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	d := now.AddDate(0, 0, -n)
	return &d
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		stockRegular int
		monthlySales int
		eolDate      *time.Time
		want         Phase
	}{
		{"depleted stock without EOL date", 0, 0, nil, StockDepleted},
		{"depleted stock overrides EOL signals", 0, 10, daysAgo(400), StockDepleted},
		{"negative stock counts as depleted", -5, 10, daysAgo(10), StockDepleted},
		{"in stock without EOL date", 100, 0, nil, InStock},
		{"over a year past EOL with stock", 50, 10, daysAgo(400), ActionRequired},
		{"under a month of stock left", 5, 10, daysAgo(30), SellOutStarted},
		{"over 11 months past EOL", 50, 1, daysAgo(340), SellOutStarted},
		{"recently phased out", 50, 10, daysAgo(10), PhasingOut},
		{"zero sales never triggers sell-out", 5, 0, daysAgo(30), PhasingOut},
		{"future EOL date stays phasing out", 50, 10, daysAgo(-30), PhasingOut},
		{"exactly 365 days is not action required", 50, 1, daysAgo(365), SellOutStarted},
		{"exactly one month of stock is not sell-out", 10, 10, daysAgo(30), PhasingOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.stockRegular, tt.monthlySales, tt.eolDate, now))
		})
	}
}

func TestCalculateIsPure(t *testing.T) {
	eol := daysAgo(100)
	first := Calculate(42, 7, eol, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Calculate(42, 7, eol, now))
	}
}

func TestMonthsOfStock(t *testing.T) {
	months, ok := MonthsOfStock(5, 10)
	assert.True(t, ok)
	assert.Equal(t, 0.5, months)

	months, ok = MonthsOfStock(100, 3)
	assert.True(t, ok)
	assert.Equal(t, 33.33, months, "rounded to two decimals")

	_, ok = MonthsOfStock(100, 0)
	assert.False(t, ok, "undefined without sales")
}

func TestDaysSinceEOL(t *testing.T) {
	days, ok := DaysSinceEOL(daysAgo(400), now)
	assert.True(t, ok)
	assert.Equal(t, 400, days)

	days, ok = DaysSinceEOL(daysAgo(-30), now)
	assert.True(t, ok)
	assert.Equal(t, -30, days, "future EOL dates yield negative days")

	_, ok = DaysSinceEOL(nil, now)
	assert.False(t, ok)
}

func TestPhaseInfo(t *testing.T) {
	assert.Equal(t, "In Stock", InStock.GetInfo().Label)
	assert.Equal(t, "Action Required", ActionRequired.GetInfo().Label)

	all := All()
	assert.Len(t, all, 5)
	assert.Equal(t, StockDepleted, all[3].Phase)
}
