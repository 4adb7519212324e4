package model

import (
	"time"

	"gorm.io/gorm"
)

// PortalStatus controls product visibility on the public website and the
// reseller portal.
type PortalStatus string

const (
	PortalActive   PortalStatus = "active"
	PortalInactive PortalStatus = "inactive"
	PortalHidden   PortalStatus = "hidden"
)

// Product is one reconciled catalog product. Most columns are overwritten on
// every AFAS sync; eol_date, eol_reason, replacement_product, supplier and the
// portal statuses are curated manually and survive syncs.
type Product struct {
	BaseModel
	ProductCode  string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"product_code" validate:"required"`
	ProductName  string  `gorm:"type:varchar(255);not null" json:"product_name"`
	ArticleGroup *string `gorm:"type:varchar(100)" json:"article_group"`
	Blocked      bool    `gorm:"column:product_blocked;default:false" json:"product_blocked"`

	// Supplier comes from a one-time manual import, never from AFAS.
	Supplier *string `gorm:"type:varchar(255)" json:"supplier"`

	// EOL management (manual)
	EOLDate            *time.Time `gorm:"column:eol_date;type:date" json:"eol_date"`
	EOLReason          *string    `gorm:"column:eol_reason" json:"eol_reason"`
	ReplacementProduct *string    `gorm:"type:varchar(50)" json:"replacement_product"`

	// Multi-currency pricing
	RrpEUR *float64 `gorm:"column:rrp_eur" json:"rrp_eur"`
	RrpGBP *float64 `gorm:"column:rrp_gbp" json:"rrp_gbp"`
	RrpUSD *float64 `gorm:"column:rrp_usd" json:"rrp_usd"`
	MSP    *float64 `gorm:"column:msp" json:"msp"`
	Rrp    *float64 `gorm:"column:rrp" json:"rrp"` // Legacy alias of rrp_eur, see BeforeSave

	// Stock, summed across warehouses
	StockRegular     int      `gorm:"default:0" json:"stock_regular"`
	StockOnOrder     int      `gorm:"default:0" json:"stock_on_order"`
	StockReserved    int      `gorm:"default:0" json:"stock_reserved"`
	StockEconomic    int      `gorm:"default:0" json:"stock_economic"`
	StockMinimum     *float64 `json:"stock_minimum"`
	StockReplenishTo *float64 `json:"stock_replenish_to"`
	StockQuantity    int      `gorm:"default:0" json:"stock_quantity"` // Legacy alias of stock_regular

	// Rolling 12-month sales, oldest month first
	MonthlySales int `gorm:"default:0" json:"monthly_sales"`
	SalesMonth1  int `gorm:"default:0" json:"sales_month_1"`
	SalesMonth2  int `gorm:"default:0" json:"sales_month_2"`
	SalesMonth3  int `gorm:"default:0" json:"sales_month_3"`
	SalesMonth4  int `gorm:"default:0" json:"sales_month_4"`
	SalesMonth5  int `gorm:"default:0" json:"sales_month_5"`
	SalesMonth6  int `gorm:"default:0" json:"sales_month_6"`
	SalesMonth7  int `gorm:"default:0" json:"sales_month_7"`
	SalesMonth8  int `gorm:"default:0" json:"sales_month_8"`
	SalesMonth9  int `gorm:"default:0" json:"sales_month_9"`
	SalesMonth10 int `gorm:"default:0" json:"sales_month_10"`
	SalesMonth11 int `gorm:"default:0" json:"sales_month_11"`
	SalesMonth12 int `gorm:"default:0" json:"sales_month_12"`
	MonthsOfData int `gorm:"default:12" json:"months_of_data"`

	// Packaging multipliers
	UnitPerDozen      *int `json:"unit_per_dozen"`
	UnitPerPallet     *int `json:"unit_per_pallet"`
	UnitPerOuterDozen *int `json:"unit_per_outer_dozen"`

	// Portal visibility
	WebsiteStatus        PortalStatus `gorm:"type:varchar(10);default:'active'" json:"website_status"`
	ResellerPortalStatus PortalStatus `gorm:"type:varchar(10);default:'active'" json:"reseller_portal_status"`

	// Phase tracking (0-4)
	CurrentPhase int `gorm:"default:0" json:"current_phase"`
}

// BeforeSave keeps the legacy alias columns in lockstep with their canonical
// counterparts. The canonical field wins whenever it is set; a legacy value
// only fills an unset canonical one. After every save stock_quantity ==
// stock_regular and rrp == rrp_eur.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.RrpEUR != nil {
		v := *p.RrpEUR
		p.Rrp = &v
	} else if p.Rrp != nil {
		v := *p.Rrp
		p.RrpEUR = &v
	}

	if p.StockRegular == 0 && p.StockQuantity != 0 {
		p.StockRegular = p.StockQuantity
	}
	p.StockQuantity = p.StockRegular
	return nil
}

// SalesMonths returns the 12 sales slots, oldest first.
func (p *Product) SalesMonths() [12]int {
	return [12]int{
		p.SalesMonth1, p.SalesMonth2, p.SalesMonth3, p.SalesMonth4,
		p.SalesMonth5, p.SalesMonth6, p.SalesMonth7, p.SalesMonth8,
		p.SalesMonth9, p.SalesMonth10, p.SalesMonth11, p.SalesMonth12,
	}
}

// SetSalesMonths assigns the 12 sales slots, oldest first.
func (p *Product) SetSalesMonths(months [12]int) {
	p.SalesMonth1, p.SalesMonth2, p.SalesMonth3, p.SalesMonth4 = months[0], months[1], months[2], months[3]
	p.SalesMonth5, p.SalesMonth6, p.SalesMonth7, p.SalesMonth8 = months[4], months[5], months[6], months[7]
	p.SalesMonth9, p.SalesMonth10, p.SalesMonth11, p.SalesMonth12 = months[8], months[9], months[10], months[11]
}

// ProductView is the read-only overlay returned by the API: the stored row
// plus the derived figures. It is recomputed on every read, never persisted.
type ProductView struct {
	Product
	MonthsOfStock   *float64 `gorm:"-" json:"months_of_stock"`
	DaysSinceEOL    *int     `gorm:"-" json:"days_since_eol"`
	CalculatedPhase int      `gorm:"-" json:"calculated_phase"`
}

// PhaseHistory records one lifecycle phase transition for a product.
type PhaseHistory struct {
	BaseModel
	ProductCode string  `gorm:"type:varchar(50);index;not null" json:"product_code"`
	FromPhase   int     `json:"from_phase"`
	ToPhase     int     `json:"to_phase"`
	Reason      *string `json:"reason"`
}
