package repository

import (
	"go-pos-sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OperatorRepository interface {
	FindByID(id uuid.UUID) (*model.Operator, error)
	FindAllActive() ([]model.Operator, error)
}

type operatorRepo struct {
	db *gorm.DB
}

func NewOperatorRepo(db *gorm.DB) OperatorRepository {
	return &operatorRepo{db}
}

func (r *operatorRepo) FindByID(id uuid.UUID) (*model.Operator, error) {
	var op model.Operator
	if err := r.db.First(&op, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepo) FindAllActive() ([]model.Operator, error) {
	var ops []model.Operator
	err := r.db.Where("is_active = ?", true).Find(&ops).Error
	return ops, err
}
