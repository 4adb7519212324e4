package afas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileAssemblesAllSources(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	minStock := 20.0
	item := Item{
		ItemCode:         "A1",
		Description:      "Widget Deluxe",
		Group:            "Widgets",
		LowestSalesPrice: 49.95,
		MinimumStock:     &minStock,
	}

	p := Reconcile(item,
		[]SalesPrice{{ItemCode: "A1", Currency: "EUR", SalesPrice: 99.95, CurrentPrice: true}},
		[]Stock{
			{ItemCode: "A1", Warehouse: "NL1", Stock: 100, OnOrder: 10, Reserved: 5, Economic: 105},
			{ItemCode: "A1", Warehouse: "NL2", Stock: 20, OnOrder: 0, Reserved: 0, Economic: 20},
		},
		[]CumulativeSales{{ItemCode: "A1", Year: 2025, Period: 2, Quantity: 30}},
		[]UnitPerItem{{ItemCode: "A1", UnitID: "DOZ", Amount: 12}},
		now,
	)

	assert.Equal(t, "A1", p.ProductCode)
	assert.Equal(t, "Widget Deluxe", p.ProductName)
	require.NotNil(t, p.ArticleGroup)
	assert.Equal(t, "Widgets", *p.ArticleGroup)
	require.NotNil(t, p.RrpEUR)
	assert.Equal(t, 99.95, *p.RrpEUR)
	assert.Nil(t, p.RrpGBP)
	require.NotNil(t, p.MSP)
	assert.Equal(t, 49.95, *p.MSP)
	require.NotNil(t, p.StockMinimum)
	assert.Equal(t, 20.0, *p.StockMinimum)

	assert.Equal(t, 120, p.StockRegular)
	assert.Equal(t, 10, p.StockOnOrder)
	assert.Equal(t, 5, p.StockReserved)
	assert.Equal(t, 125, p.StockEconomic)

	assert.Equal(t, 30, p.SalesMonth12, "Feb 2025 lands in the newest slot")
	assert.Equal(t, 30, p.MonthlySales, "single active month averages to itself")
	assert.Equal(t, WindowMonths, p.MonthsOfData)

	require.NotNil(t, p.UnitPerDozen)
	assert.Equal(t, 12, *p.UnitPerDozen)
	assert.Nil(t, p.UnitPerPallet)
}

func TestReconcileEmptySourcesDefaultToZeroStock(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	p := Reconcile(Item{ItemCode: "A1", Description: "Bare"}, nil, nil, nil, nil, now)

	assert.Equal(t, 0, p.StockRegular, "stock figures are concrete integers, never null")
	assert.Equal(t, 0, p.StockOnOrder)
	assert.Equal(t, 0, p.StockReserved)
	assert.Equal(t, 0, p.StockEconomic)
	assert.Nil(t, p.ArticleGroup)
	assert.Nil(t, p.MSP, "a zero lowest price means no MSP")
	assert.Equal(t, [12]int{}, p.SalesMonths())
	assert.Zero(t, p.MonthlySales)
	assert.Equal(t, WindowMonths, p.MonthsOfData, "window length is fixed even without sales records")
}
