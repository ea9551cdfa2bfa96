package service

import (
	"errors"
	"time"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/repository"
	"go-pos-sync/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// CartService owns the draft-sale rules: each operator has at most one
// draft sale, and a sale's total always equals the sum of its line item
// subtotals. Every mutating operation runs its statements in one atomic
// unit against the local store, so readers never observe a total that
// disagrees with the items.
type CartService interface {
	ResolveDraftSale(operatorID uuid.UUID) (uuid.UUID, error)
	GetCart(operatorID uuid.UUID) (*model.Sale, error)
	AddProduct(operatorID, productID uuid.UUID) (*model.Sale, error)
	SetQuantity(saleID, productID uuid.UUID, quantity int) (*model.Sale, error)
	RemoveItem(saleID, productID uuid.UUID) (*model.Sale, error)
	ClearCart(saleID uuid.UUID) error
	CompleteSale(operatorID, saleID uuid.UUID) (uuid.UUID, error)
}

type cartService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewCartService(sRepo repository.SaleRepository, pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) CartService {
	return &cartService{
		saleRepo:    sRepo,
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

// ResolveDraftSale returns the operator's existing draft sale id, creating
// a fresh draft only when the point lookup finds none. The lookup and the
// insert share one transaction so two callers cannot both create a draft.
func (s *cartService) ResolveDraftSale(operatorID uuid.UUID) (uuid.UUID, error) {
	var saleID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := s.resolveDraftTx(tx, operatorID)
		if err != nil {
			return err
		}
		saleID = id
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return saleID, nil
}

// resolveDraftTx implements the resolve-or-create rule inside an already
// open transaction
func (s *cartService) resolveDraftTx(tx *gorm.DB, operatorID uuid.UUID) (uuid.UUID, error) {
	var sale model.Sale
	err := tx.Where("operator_id = ? AND status = ?", operatorID, model.SaleDraft).First(&sale).Error
	if err == nil {
		return sale.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	sale = model.Sale{
		OperatorID:  operatorID,
		Status:      model.SaleDraft,
		TotalAmount: 0,
	}
	if err := tx.Create(&sale).Error; err != nil {
		return uuid.Nil, err
	}
	return sale.ID, nil
}

// GetCart returns the operator's current draft with items, or nil if the
// operator has no draft sale
func (s *cartService) GetCart(operatorID uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindDraftByOperator(operatorID)
}

func (s *cartService) AddProduct(operatorID, productID uuid.UUID) (*model.Sale, error) {
	var saleID uuid.UUID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Resolve or create the operator's draft sale
		id, err := s.resolveDraftTx(tx, operatorID)
		if err != nil {
			return err
		}
		saleID = id

		// 2. Snapshot the product's current price
		var product model.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			return ErrProductNotFound
		}

		// 3. Increment the existing line or insert a new one
		item, err := s.saleRepo.FindItem(tx, saleID, productID)
		if err != nil {
			return err
		}
		if item != nil {
			item.Quantity++
			item.Subtotal = float64(item.Quantity) * item.UnitPrice
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		} else {
			item = &model.SaleItem{
				SaleID:    saleID,
				ProductID: productID,
				Quantity:  1,
				UnitPrice: product.Price,
				Subtotal:  product.Price,
			}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}

		// 4. Keep the header total in lock-step with the items
		return s.recomputeTotalTx(tx, saleID)
	})
	if err != nil {
		return nil, err
	}

	return s.broadcastCart(saleID)
}

func (s *cartService) SetQuantity(saleID, productID uuid.UUID, quantity int) (*model.Sale, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.saleRepo.FindItem(tx, saleID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			// No matching line: silent no-op
			return nil
		}

		if quantity <= 0 {
			if err := tx.Delete(item).Error; err != nil {
				return err
			}
		} else {
			item.Quantity = quantity
			item.Subtotal = float64(quantity) * item.UnitPrice
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		return s.recomputeTotalTx(tx, saleID)
	})
	if err != nil {
		return nil, err
	}

	return s.broadcastCart(saleID)
}

func (s *cartService) RemoveItem(saleID, productID uuid.UUID) (*model.Sale, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ? AND product_id = ?", saleID, productID).
			Delete(&model.SaleItem{}).Error; err != nil {
			return err
		}
		return s.recomputeTotalTx(tx, saleID)
	})
	if err != nil {
		return nil, err
	}

	return s.broadcastCart(saleID)
}

// ClearCart hard-deletes the draft: all lines first, then the header. The
// sale id ceases to exist and the next add creates a fresh one.
func (s *cartService) ClearCart(saleID uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", saleID).Delete(&model.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Sale{}, "id = ?", saleID).Error
	})
	if err != nil {
		return err
	}

	if s.wsHub != nil {
		go s.wsHub.Publish("cart_update", map[string]interface{}{
			"sale_id": saleID,
			"cleared": true,
		})
	}
	return nil
}

// CompleteSale transitions the draft to completed. Missing preconditions
// (unknown operator or sale, wrong owner, not a draft, empty cart) are
// silent no-ops returning no identifier, per the checkout contract.
func (s *cartService) CompleteSale(operatorID, saleID uuid.UUID) (uuid.UUID, error) {
	if operatorID == uuid.Nil || saleID == uuid.Nil {
		return uuid.Nil, nil
	}

	var completedID uuid.UUID
	var completedTotal float64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale model.Sale
		if err := tx.First(&sale, "id = ?", saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if sale.OperatorID != operatorID || sale.Status != model.SaleDraft {
			return nil
		}

		var itemCount int64
		if err := tx.Model(&model.SaleItem{}).Where("sale_id = ?", saleID).Count(&itemCount).Error; err != nil {
			return err
		}
		if itemCount == 0 {
			return nil
		}

		total, err := s.saleRepo.SumSubtotals(tx, saleID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&sale).Updates(map[string]interface{}{
			"status":       model.SaleCompleted,
			"total_amount": total,
			"completed_at": now,
			"synced":       false,
		}).Error; err != nil {
			return err
		}

		completedID = saleID
		completedTotal = total
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	if completedID != uuid.Nil && s.wsHub != nil {
		go s.wsHub.Publish("sale_completed", map[string]interface{}{
			"sale_id":      completedID,
			"operator_id":  operatorID,
			"total_amount": completedTotal,
		})
	}
	return completedID, nil
}

// recomputeTotalTx rewrites the header total from the sum of the line
// subtotals, inside the caller's transaction
func (s *cartService) recomputeTotalTx(tx *gorm.DB, saleID uuid.UUID) error {
	total, err := s.saleRepo.SumSubtotals(tx, saleID)
	if err != nil {
		return err
	}
	return s.saleRepo.UpdateTotal(tx, saleID, total)
}

// broadcastCart reloads the sale post-commit and publishes it to the hub
func (s *cartService) broadcastCart(saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		go s.wsHub.Publish("cart_update", map[string]interface{}{
			"sale_id":      sale.ID,
			"operator_id":  sale.OperatorID,
			"total_amount": sale.TotalAmount,
			"item_count":   len(sale.Items),
		})
	}
	return sale, nil
}
