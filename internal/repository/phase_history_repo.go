package repository

import (
	"go-eol-dashboard/internal/model"

	"gorm.io/gorm"
)

type PhaseHistoryRepository interface {
	Create(entry *model.PhaseHistory) error
	FindByProductCode(code string) ([]model.PhaseHistory, error)
}

type phaseHistoryRepo struct {
	db *gorm.DB
}

func NewPhaseHistoryRepo(db *gorm.DB) PhaseHistoryRepository {
	return &phaseHistoryRepo{db}
}

func (r *phaseHistoryRepo) Create(entry *model.PhaseHistory) error {
	return r.db.Create(entry).Error
}

func (r *phaseHistoryRepo) FindByProductCode(code string) ([]model.PhaseHistory, error) {
	var entries []model.PhaseHistory
	err := r.db.Where("product_code = ?", code).Order("created_at DESC").Find(&entries).Error
	return entries, err
}
