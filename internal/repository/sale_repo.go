package repository

import (
	"errors"

	"go-pos-sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindDraftByOperator(operatorID uuid.UUID) (*model.Sale, error)
	FindHistoryByOperator(operatorID uuid.UUID) ([]model.Sale, error)
	FindItem(tx *gorm.DB, saleID, productID uuid.UUID) (*model.SaleItem, error)
	SumSubtotals(tx *gorm.DB, saleID uuid.UUID) (float64, error)
	UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total float64) error
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Items.Product").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindDraftByOperator is the direct point lookup behind the one-draft rule.
// Returns (nil, nil) when the operator has no draft.
func (r *saleRepo) FindDraftByOperator(operatorID uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Items.Product").
		Where("operator_id = ? AND status = ?", operatorID, model.SaleDraft).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindHistoryByOperator(operatorID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").Preload("Items.Product").
		Where("operator_id = ? AND status <> ?", operatorID, model.SaleDraft).
		Order("completed_at DESC").
		Find(&sales).Error
	return sales, err
}

// FindItem returns (nil, nil) when no line matches, so callers can branch
// between increment and insert without error juggling.
func (r *saleRepo) FindItem(tx *gorm.DB, saleID, productID uuid.UUID) (*model.SaleItem, error) {
	var item model.SaleItem
	err := tx.Where("sale_id = ? AND product_id = ?", saleID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SumSubtotals takes tx so the aggregate runs inside the same atomic unit
// as the line mutation it follows
func (r *saleRepo) SumSubtotals(tx *gorm.DB, saleID uuid.UUID) (float64, error) {
	var total float64
	err := tx.Model(&model.SaleItem{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&total).Error
	return total, err
}

func (r *saleRepo) UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total float64) error {
	return tx.Model(&model.Sale{}).
		Where("id = ?", saleID).
		Update("total_amount", total).Error
}
