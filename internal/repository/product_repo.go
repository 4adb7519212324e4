package repository

import (
	"go-eol-dashboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// syncedColumns are the columns a sync upsert is allowed to overwrite.
// Curated fields (eol_date, eol_reason, replacement_product, supplier, portal
// statuses) are deliberately absent so manual edits survive every sync.
var syncedColumns = []string{
	"product_name", "article_group", "product_blocked",
	"rrp_eur", "rrp_gbp", "rrp_usd", "rrp", "msp",
	"stock_regular", "stock_on_order", "stock_reserved", "stock_economic",
	"stock_minimum", "stock_replenish_to", "stock_quantity",
	"monthly_sales",
	"sales_month_1", "sales_month_2", "sales_month_3", "sales_month_4",
	"sales_month_5", "sales_month_6", "sales_month_7", "sales_month_8",
	"sales_month_9", "sales_month_10", "sales_month_11", "sales_month_12",
	"months_of_data",
	"unit_per_dozen", "unit_per_pallet", "unit_per_outer_dozen",
	"current_phase", "updated_at",
}

type ProductRepository interface {
	UpsertBatch(products []model.Product) error
	FindAll() ([]model.Product, error)
	FindByCode(code string) (*model.Product, error)
	Update(product *model.Product) error
	SetSupplier(code, supplier string) error
	Delete(code string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// UpsertBatch writes one chunk of reconciled products in a single statement.
// Conflicts on product_code update the synced columns in place, so re-running
// a sync never duplicates rows.
func (r *productRepo) UpsertBatch(products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}},
		DoUpdates: clause.AssignmentColumns(syncedColumns),
	}).Create(&products).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("product_code").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCode(code string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "product_code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// SetSupplier backfills the manually imported supplier name. Sync upserts
// never touch this column.
func (r *productRepo) SetSupplier(code, supplier string) error {
	return r.db.Model(&model.Product{}).
		Where("product_code = ?", code).
		Update("supplier", supplier).Error
}

func (r *productRepo) Delete(code string) error {
	return r.db.Where("product_code = ?", code).Delete(&model.Product{}).Error
}
