package afas

import (
	"time"

	"go-eol-dashboard/internal/model"
)

// Reconcile joins one Items row with the four other connectors' record sets
// into a single normalized product. Pure composition: no network or storage
// access, and stock figures always come out as concrete integers.
func Reconcile(item Item, prices []SalesPrice, stock []Stock, sales []CumulativeSales, units []UnitPerItem, now time.Time) model.Product {
	code := item.ItemCode

	currency := PricesByCurrency(code, prices)
	totals := AggregateStock(code, stock)
	slots := RollingSalesWindow(code, sales, now)
	packaging := ExtractPackagingUnits(code, units)

	p := model.Product{
		ProductCode:      code,
		ProductName:      item.Description,
		Blocked:          item.Blocked,
		RrpEUR:           currency.EUR,
		RrpGBP:           currency.GBP,
		RrpUSD:           currency.USD,
		StockRegular:     totals.Regular,
		StockOnOrder:     totals.OnOrder,
		StockReserved:    totals.Reserved,
		StockEconomic:    totals.Economic,
		StockMinimum:     item.MinimumStock,
		StockReplenishTo: item.ReplenishTo,
		MonthlySales:     MonthlyAverage(slots),
		// Fixed window length, even for products without any sales records.
		MonthsOfData:      WindowMonths,
		UnitPerDozen:      packaging.Dozen,
		UnitPerPallet:     packaging.Pallet,
		UnitPerOuterDozen: packaging.OuterDozen,
	}
	p.SetSalesMonths(slots)

	if item.Group != "" {
		g := item.Group
		p.ArticleGroup = &g
	}
	if item.LowestSalesPrice != 0 {
		msp := item.LowestSalesPrice
		p.MSP = &msp
	}
	return p
}
