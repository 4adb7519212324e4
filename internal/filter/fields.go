package filter

import "go-eol-dashboard/internal/model"

// accessor maps a filter field identifier to a typed getter. The table
// replaces dynamic key lookup: an unknown field simply never matches, and the
// set of filterable fields is fixed at compile time.
type accessor struct {
	Type FieldType
	// get returns the field value and whether it is present; absent (nil)
	// values make the condition evaluate to false.
	get func(*model.ProductView) (interface{}, bool)
}

var fields = map[string]accessor{
	"product_code": {FieldText, func(v *model.ProductView) (interface{}, bool) { return v.ProductCode, true }},
	"product_name": {FieldText, func(v *model.ProductView) (interface{}, bool) { return v.ProductName, true }},
	"article_group": {FieldText, func(v *model.ProductView) (interface{}, bool) {
		if v.ArticleGroup == nil {
			return nil, false
		}
		return *v.ArticleGroup, true
	}},
	"supplier": {FieldText, func(v *model.ProductView) (interface{}, bool) {
		if v.Supplier == nil {
			return nil, false
		}
		return *v.Supplier, true
	}},
	"eol_reason": {FieldText, func(v *model.ProductView) (interface{}, bool) {
		if v.EOLReason == nil {
			return nil, false
		}
		return *v.EOLReason, true
	}},
	"replacement_product": {FieldText, func(v *model.ProductView) (interface{}, bool) {
		if v.ReplacementProduct == nil {
			return nil, false
		}
		return *v.ReplacementProduct, true
	}},

	"eol_date": {FieldDate, func(v *model.ProductView) (interface{}, bool) {
		if v.EOLDate == nil {
			return nil, false
		}
		return *v.EOLDate, true
	}},

	"rrp_eur":            {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.RrpEUR })},
	"rrp_gbp":            {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.RrpGBP })},
	"rrp_usd":            {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.RrpUSD })},
	"msp":                {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.MSP })},
	"stock_minimum":      {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.StockMinimum })},
	"stock_replenish_to": {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.StockReplenishTo })},
	"months_of_stock":    {FieldNumber, floatField(func(v *model.ProductView) *float64 { return v.MonthsOfStock })},

	"stock_regular":    {FieldNumber, intField(func(v *model.ProductView) int { return v.StockRegular })},
	"stock_on_order":   {FieldNumber, intField(func(v *model.ProductView) int { return v.StockOnOrder })},
	"stock_reserved":   {FieldNumber, intField(func(v *model.ProductView) int { return v.StockReserved })},
	"stock_economic":   {FieldNumber, intField(func(v *model.ProductView) int { return v.StockEconomic })},
	"monthly_sales":    {FieldNumber, intField(func(v *model.ProductView) int { return v.MonthlySales })},
	"months_of_data":   {FieldNumber, intField(func(v *model.ProductView) int { return v.MonthsOfData })},
	"current_phase":    {FieldNumber, intField(func(v *model.ProductView) int { return v.CurrentPhase })},
	"calculated_phase": {FieldNumber, intField(func(v *model.ProductView) int { return v.CalculatedPhase })},

	"days_since_eol": {FieldNumber, func(v *model.ProductView) (interface{}, bool) {
		if v.DaysSinceEOL == nil {
			return nil, false
		}
		return *v.DaysSinceEOL, true
	}},

	"product_blocked": {FieldBoolean, func(v *model.ProductView) (interface{}, bool) { return v.Blocked, true }},

	"website_status":         {FieldEnum, func(v *model.ProductView) (interface{}, bool) { return string(v.WebsiteStatus), true }},
	"reseller_portal_status": {FieldEnum, func(v *model.ProductView) (interface{}, bool) { return string(v.ResellerPortalStatus), true }},
}

func floatField(get func(*model.ProductView) *float64) func(*model.ProductView) (interface{}, bool) {
	return func(v *model.ProductView) (interface{}, bool) {
		p := get(v)
		if p == nil {
			return nil, false
		}
		return *p, true
	}
}

func intField(get func(*model.ProductView) int) func(*model.ProductView) (interface{}, bool) {
	return func(v *model.ProductView) (interface{}, bool) {
		return get(v), true
	}
}

// Fields lists the filterable field identifiers with their types, for the
// filter builder UI.
func Fields() map[string]FieldType {
	out := make(map[string]FieldType, len(fields))
	for name, acc := range fields {
		out[name] = acc.Type
	}
	return out
}
