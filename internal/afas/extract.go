package afas

// Pure projections from one connector's full record set to the subset
// relevant for a single product code. All of them are deterministic and
// side-effect free.

// CurrencyPrices holds the current sales price per currency; nil when the
// connector has no current price in that currency.
type CurrencyPrices struct {
	EUR *float64
	GBP *float64
	USD *float64
}

// PricesByCurrency picks the first current price per currency for a product.
func PricesByCurrency(productCode string, records []SalesPrice) CurrencyPrices {
	var prices CurrencyPrices
	for i := range records {
		r := &records[i]
		if r.ItemCode != productCode || !r.CurrentPrice {
			continue
		}
		switch r.Currency {
		case "EUR":
			if prices.EUR == nil {
				v := r.SalesPrice
				prices.EUR = &v
			}
		case "GBP":
			if prices.GBP == nil {
				v := r.SalesPrice
				prices.GBP = &v
			}
		case "USD":
			if prices.USD == nil {
				v := r.SalesPrice
				prices.USD = &v
			}
		}
	}
	return prices
}

// StockTotals holds warehouse stock summed per figure. A product with no
// stock rows has all-zero totals, never nulls.
type StockTotals struct {
	Regular  int
	OnOrder  int
	Reserved int
	Economic int
}

// AggregateStock sums the four stock figures across all warehouses for a
// product. Rows for other product codes do not contribute.
func AggregateStock(productCode string, records []Stock) StockTotals {
	var totals StockTotals
	for i := range records {
		r := &records[i]
		if r.ItemCode != productCode {
			continue
		}
		totals.Regular += r.Stock
		totals.OnOrder += r.OnOrder
		totals.Reserved += r.Reserved
		totals.Economic += r.Economic
	}
	return totals
}

// Packaging unit identifiers used by the Unit Per Item connector.
const (
	unitDozen      = "DOZ"
	unitPallet     = "PAL"
	unitOuterDozen = "ODZ"
)

// PackagingUnits holds the per-packaging multipliers; nil when the product
// has no row for that unit.
type PackagingUnits struct {
	Dozen      *int
	Pallet     *int
	OuterDozen *int
}

// ExtractPackagingUnits picks the first DOZ/PAL/ODZ amount for a product.
func ExtractPackagingUnits(productCode string, records []UnitPerItem) PackagingUnits {
	var units PackagingUnits
	for i := range records {
		r := &records[i]
		if r.ItemCode != productCode {
			continue
		}
		switch r.UnitID {
		case unitDozen:
			if units.Dozen == nil {
				v := r.Amount
				units.Dozen = &v
			}
		case unitPallet:
			if units.Pallet == nil {
				v := r.Amount
				units.Pallet = &v
			}
		case unitOuterDozen:
			if units.OuterDozen == nil {
				v := r.Amount
				units.OuterDozen = &v
			}
		}
	}
	return units
}
