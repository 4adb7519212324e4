package afas

// Raw record types for the five EOL dashboard GetConnectors. Field names
// follow the AFAS JSON payloads exactly; note that the product code key is
// spelled ItemCode on some connectors and Itemcode on others.

// Item is one row of the EOL_dashboard_Items connector.
type Item struct {
	TypeItem         string   `json:"Type_item"`
	ItemCode         string   `json:"ItemCode"`
	Description      string   `json:"Omschrijving"`
	Group            string   `json:"Group"`
	Blocked          bool     `json:"Geblokkeerd"`
	LowestSalesPrice float64  `json:"LowestSalesPrice"`
	MinimumStock     *float64 `json:"Minimum_voorraad"`
	ReplenishTo      *float64 `json:"Aanvullen_tot"`
}

// SalesPrice is one row of the EOL_dashboard_General_SalesPrice connector.
type SalesPrice struct {
	TypeItem     string  `json:"Type_item"`
	ItemCode     string  `json:"Itemcode"`
	Currency     string  `json:"Currency"`
	SalesPrice   float64 `json:"SalesPrice"`
	CurrentPrice bool    `json:"CurrentPrice"`
}

// Stock is one row of the EOL_dashboard_Items_Stock connector. One row per
// (product, warehouse) pair.
type Stock struct {
	TypeItem  string `json:"Type_item"`
	ItemCode  string `json:"ItemCode"`
	Warehouse string `json:"Warehouse"`
	Stock     int    `json:"Stock"`
	OnOrder   int    `json:"In_bestelling"`
	Reserved  int    `json:"Totaal_gereserveerd"`
	Economic  int    `json:"EconomicalStock"`
}

// CumulativeSales is one row of the EOL_dashboard_Cumulative_Sales connector:
// units sold for one product in one calendar (year, period) bucket.
type CumulativeSales struct {
	Year     int    `json:"Jaar"`
	Period   int    `json:"Periodenummer"`
	Code     string `json:"Code"`
	ItemCode string `json:"Itemcode"`
	Quantity int    `json:"Aantal"`
}

// UnitPerItem is one row of the EOL_dashboard_Unit_Per_Item connector.
type UnitPerItem struct {
	ItemType string `json:"ItemType"`
	ItemCode string `json:"ItemCode"`
	UnitID   string `json:"UnitId"`
	Amount   int    `json:"Amount"`
}
