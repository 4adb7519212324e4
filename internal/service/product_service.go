package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"go-eol-dashboard/internal/filter"
	"go-eol-dashboard/internal/model"
	"go-eol-dashboard/internal/phase"
	"go-eol-dashboard/internal/repository"
	"go-eol-dashboard/internal/ws"
	"go-eol-dashboard/pkg/validator"
)

var ErrProductNotFound = errors.New("product not found")

// ProductUpdate carries a manual edit from the dashboard. Nil fields are
// left untouched.
type ProductUpdate struct {
	ProductName          *string             `json:"product_name"`
	EOLDate              *time.Time          `json:"eol_date"`
	ClearEOLDate         bool                `json:"clear_eol_date"`
	EOLReason            *string             `json:"eol_reason"`
	ReplacementProduct   *string             `json:"replacement_product"`
	RrpEUR               *float64            `json:"rrp_eur"`
	RrpGBP               *float64            `json:"rrp_gbp"`
	RrpUSD               *float64            `json:"rrp_usd"`
	MSP                  *float64            `json:"msp"`
	WebsiteStatus        *model.PortalStatus `json:"website_status"`
	ResellerPortalStatus *model.PortalStatus `json:"reseller_portal_status"`
}

// WebhookUpdate is the partial update pushed by external systems. Legacy
// field names (stock_quantity, rrp) are accepted and mapped onto the
// canonical columns; the canonical field wins when both are provided.
type WebhookUpdate struct {
	ProductCode   string   `json:"product_code" validate:"required"`
	StockQuantity *int     `json:"stock_quantity"`
	StockRegular  *int     `json:"stock_regular"`
	MonthlySales  *int     `json:"monthly_sales"`
	ProductName   *string  `json:"product_name"`
	Rrp           *float64 `json:"rrp"`
	RrpEUR        *float64 `json:"rrp_eur"`
	MSP           *float64 `json:"msp"`
}

// SupplierImportResult summarizes a supplier mapping import.
type SupplierImportResult struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Updated   int `json:"updated"`
}

type ProductService interface {
	List() ([]model.ProductView, error)
	Get(code string) (*model.ProductView, error)
	Update(code string, req *ProductUpdate) (*model.ProductView, error)
	Delete(code string) error
	Search(groups []filter.Group, groupLogic filter.Logic) ([]model.ProductView, error)
	ApplyWebhook(req *WebhookUpdate) (*model.ProductView, error)
	ImportSuppliers(mapping map[string]string) (*SupplierImportResult, error)
	History(code string) ([]model.PhaseHistory, error)
}

type productService struct {
	productRepo repository.ProductRepository
	historyRepo repository.PhaseHistoryRepository
	hub         *ws.Hub
	now         func() time.Time
}

func NewProductService(productRepo repository.ProductRepository, historyRepo repository.PhaseHistoryRepository, hub *ws.Hub) ProductService {
	return &productService{
		productRepo: productRepo,
		historyRepo: historyRepo,
		hub:         hub,
		now:         time.Now,
	}
}

// toView overlays the derived read-only figures on a stored product.
func toView(p model.Product, now time.Time) model.ProductView {
	view := model.ProductView{Product: p}

	if months, ok := phase.MonthsOfStock(p.StockRegular, p.MonthlySales); ok {
		view.MonthsOfStock = &months
	}
	if days, ok := phase.DaysSinceEOL(p.EOLDate, now); ok {
		view.DaysSinceEOL = &days
	}
	view.CalculatedPhase = int(phase.Calculate(p.StockRegular, p.MonthlySales, p.EOLDate, now))
	return view
}

func (s *productService) List() ([]model.ProductView, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]model.ProductView, len(products))
	for i := range products {
		views[i] = toView(products[i], now)
	}
	return views, nil
}

func (s *productService) Get(code string) (*model.ProductView, error) {
	product, err := s.productRepo.FindByCode(code)
	if err != nil {
		return nil, ErrProductNotFound
	}
	view := toView(*product, s.now())
	return &view, nil
}

func (s *productService) Update(code string, req *ProductUpdate) (*model.ProductView, error) {
	product, err := s.productRepo.FindByCode(code)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if req.ProductName != nil {
		product.ProductName = *req.ProductName
	}
	if req.ClearEOLDate {
		product.EOLDate = nil
	} else if req.EOLDate != nil {
		product.EOLDate = req.EOLDate
	}
	if req.EOLReason != nil {
		product.EOLReason = req.EOLReason
	}
	if req.ReplacementProduct != nil {
		product.ReplacementProduct = req.ReplacementProduct
	}
	if req.RrpEUR != nil {
		product.RrpEUR = req.RrpEUR
	}
	if req.RrpGBP != nil {
		product.RrpGBP = req.RrpGBP
	}
	if req.RrpUSD != nil {
		product.RrpUSD = req.RrpUSD
	}
	if req.MSP != nil {
		product.MSP = req.MSP
	}
	if req.WebsiteStatus != nil {
		product.WebsiteStatus = *req.WebsiteStatus
	}
	if req.ResellerPortalStatus != nil {
		product.ResellerPortalStatus = *req.ResellerPortalStatus
	}

	return s.reclassifyAndSave(product, "manual edit")
}

// ApplyWebhook merges a partial external update onto the stored record,
// re-runs the classifier, and persists.
func (s *productService) ApplyWebhook(req *WebhookUpdate) (*model.ProductView, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	product, err := s.productRepo.FindByCode(req.ProductCode)
	if err != nil {
		return nil, ErrProductNotFound
	}

	// Canonical field wins over its legacy alias when both are sent.
	if req.StockRegular != nil {
		product.StockRegular = *req.StockRegular
	} else if req.StockQuantity != nil {
		product.StockRegular = *req.StockQuantity
	}
	if req.RrpEUR != nil {
		product.RrpEUR = req.RrpEUR
	} else if req.Rrp != nil {
		product.RrpEUR = req.Rrp
	}
	if req.MonthlySales != nil {
		product.MonthlySales = *req.MonthlySales
	}
	if req.ProductName != nil {
		product.ProductName = *req.ProductName
	}
	if req.MSP != nil {
		product.MSP = req.MSP
	}

	return s.reclassifyAndSave(product, "webhook update")
}

// reclassifyAndSave recomputes the phase, persists, and logs + broadcasts the
// transition when the phase changed.
func (s *productService) reclassifyAndSave(product *model.Product, reason string) (*model.ProductView, error) {
	now := s.now()
	oldPhase := product.CurrentPhase
	product.CurrentPhase = int(phase.Calculate(product.StockRegular, product.MonthlySales, product.EOLDate, now))

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if product.CurrentPhase != oldPhase {
		entry := &model.PhaseHistory{
			ProductCode: product.ProductCode,
			FromPhase:   oldPhase,
			ToPhase:     product.CurrentPhase,
			Reason:      &reason,
		}
		if s.historyRepo != nil {
			if err := s.historyRepo.Create(entry); err != nil {
				// History is advisory; the product write already succeeded.
				log.Printf("Warning: phase history write failed for %s: %v", product.ProductCode, err)
			}
		}

		go s.hub.BroadcastEvent(map[string]interface{}{
			"type":         "phase_changed",
			"product_code": product.ProductCode,
			"from_phase":   oldPhase,
			"to_phase":     product.CurrentPhase,
		})
	}

	view := toView(*product, now)
	return &view, nil
}

func (s *productService) Delete(code string) error {
	if _, err := s.productRepo.FindByCode(code); err != nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(code)
}

// Search evaluates the filter groups against every stored product and
// returns the matches.
func (s *productService) Search(groups []filter.Group, groupLogic filter.Logic) ([]model.ProductView, error) {
	views, err := s.List()
	if err != nil {
		return nil, err
	}

	matched := make([]model.ProductView, 0, len(views))
	for i := range views {
		if filter.EvaluateAll(&views[i], groups, groupLogic) {
			matched = append(matched, views[i])
		}
	}
	return matched, nil
}

// ImportSuppliers backfills supplier names from a product_code -> supplier
// mapping. Only products present in the store are touched; sync runs never
// overwrite the result.
func (s *productService) ImportSuppliers(mapping map[string]string) (*SupplierImportResult, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}

	result := &SupplierImportResult{Total: len(products)}
	for i := range products {
		supplier, ok := mapping[products[i].ProductCode]
		if !ok {
			result.Unmatched++
			continue
		}
		result.Matched++
		if err := s.productRepo.SetSupplier(products[i].ProductCode, supplier); err != nil {
			return result, err
		}
		result.Updated++
	}
	return result, nil
}

func (s *productService) History(code string) ([]model.PhaseHistory, error) {
	if s.historyRepo == nil {
		return nil, nil
	}
	return s.historyRepo.FindByProductCode(code)
}
