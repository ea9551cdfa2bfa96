package repository

import (
	"go-pos-sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByID(id uuid.UUID) (*model.Product, error)
	FindAllActive() ([]model.Product, error)
	FindByCategory(categoryID uuid.UUID) ([]model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindAllActive() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Where("is_active = ?", true).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCategory(categoryID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").
		Where("is_active = ? AND category_id = ?", true, categoryID).
		Order("name ASC").
		Find(&products).Error
	return products, err
}
