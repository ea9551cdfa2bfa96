package service

import (
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/repository"

	"github.com/google/uuid"
)

// CatalogService is read-only: categories and products are owned by the
// backend and only ever arrive here through the sync client.
type CatalogService interface {
	GetCategories() ([]model.Category, error)
	GetProducts(categoryID *uuid.UUID) ([]model.Product, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		categoryRepo: cRepo,
		productRepo:  pRepo,
	}
}

func (s *catalogService) GetCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *catalogService) GetProducts(categoryID *uuid.UUID) ([]model.Product, error) {
	if categoryID != nil {
		return s.productRepo.FindByCategory(*categoryID)
	}
	return s.productRepo.FindAllActive()
}
