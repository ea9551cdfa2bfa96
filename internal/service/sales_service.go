package service

import (
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/repository"

	"github.com/google/uuid"
)

// SalesService backs the sales-history screen: finished sales only, drafts
// belong to the cart.
type SalesService interface {
	GetHistory(operatorID uuid.UUID) ([]model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
}

type salesService struct {
	saleRepo repository.SaleRepository
}

func NewSalesService(saleRepo repository.SaleRepository) SalesService {
	return &salesService{saleRepo: saleRepo}
}

func (s *salesService) GetHistory(operatorID uuid.UUID) ([]model.Sale, error) {
	return s.saleRepo.FindHistoryByOperator(operatorID)
}

func (s *salesService) GetSale(id uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindByID(id)
}
