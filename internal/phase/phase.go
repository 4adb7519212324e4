// Package phase classifies products into the five EOL lifecycle phases.
package phase

import (
	"math"
	"time"
)

// Phase is one of the five lifecycle classification states.
type Phase int

const (
	InStock        Phase = 0 // Active portfolio product, no EOL date
	PhasingOut     Phase = 1 // EOL date set, only the portfolio team knows
	SellOutStarted Phase = 2 // Stock < 1 month or > 11 months since EOL
	StockDepleted  Phase = 3 // Stock quantity <= 0
	ActionRequired Phase = 4 // 12+ months past EOL and still holding stock
)

const (
	actionRequiredDays = 365
	sellOutDays        = 335
)

// MonthsOfStock returns stock coverage in months, rounded to two decimals.
// Undefined (ok=false) when monthly sales is zero or negative.
func MonthsOfStock(stockRegular, monthlySales int) (float64, bool) {
	if monthlySales <= 0 {
		return 0, false
	}
	return math.Round(float64(stockRegular)/float64(monthlySales)*100) / 100, true
}

// DaysSinceEOL returns the floored number of days between the EOL date and
// now. Negative for future EOL dates. Undefined (ok=false) without an EOL
// date.
func DaysSinceEOL(eolDate *time.Time, now time.Time) (int, bool) {
	if eolDate == nil {
		return 0, false
	}
	return int(math.Floor(now.Sub(*eolDate).Hours() / 24)), true
}

// Calculate maps a product's stock, sales rate and EOL date to its lifecycle
// phase. Rules are evaluated top to bottom, first match wins:
//
//  1. depleted stock always wins, even without an EOL date
//  2. no EOL date means an active product
//  3. more than 12 months past EOL and still holding stock
//  4. sell-out: under a month of stock left, or more than 11 months past EOL;
//     an undefined months-of-stock never triggers the first half
//  5. otherwise the product is quietly phasing out
func Calculate(stockRegular, monthlySales int, eolDate *time.Time, now time.Time) Phase {
	if stockRegular <= 0 {
		return StockDepleted
	}
	if eolDate == nil {
		return InStock
	}

	days, _ := DaysSinceEOL(eolDate, now)
	if days > actionRequiredDays {
		return ActionRequired
	}

	months, ok := MonthsOfStock(stockRegular, monthlySales)
	if (ok && months < 1) || days > sellOutDays {
		return SellOutStarted
	}
	return PhasingOut
}

// Info describes a phase for API consumers.
type Info struct {
	Phase       Phase  `json:"phase"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

var phaseInfo = map[Phase]Info{
	InStock:        {InStock, "In Stock", "In stock and portfolio product - no action required", "green"},
	PhasingOut:     {PhasingOut, "Phasing Out", "Phasing out - only portfolio team knows", "purple"},
	SellOutStarted: {SellOutStarted, "Sell Out Started", "Sell out started - stock < 1 month or > 11 months from EOL", "orange"},
	StockDepleted:  {StockDepleted, "Stock Depleted", "Stock is depleted", "red"},
	ActionRequired: {ActionRequired, "Action Required", "After 12+ months, still has stock - action required", "blue"},
}

// GetInfo returns the display metadata for a phase.
func (p Phase) GetInfo() Info {
	return phaseInfo[p]
}

// All returns the metadata for every phase, ordered 0-4.
func All() []Info {
	infos := make([]Info, 0, len(phaseInfo))
	for p := InStock; p <= ActionRequired; p++ {
		infos = append(infos, phaseInfo[p])
	}
	return infos
}
