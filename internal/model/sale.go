package model

import (
	"time"

	"github.com/google/uuid"
)

type SaleStatus string

const (
	SaleDraft     SaleStatus = "draft"
	SaleCompleted SaleStatus = "completed"
	SaleVoided    SaleStatus = "voided" // administrative only, never set by the terminal
)

// Sale is a transaction header. At most one draft sale exists per operator
// at any time; the cart service owns that rule and keeps TotalAmount equal
// to the sum of the line item subtotals after every mutation.
type Sale struct {
	BaseModel
	OperatorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"operator_id"`
	Operator    *Operator  `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	Status      SaleStatus `gorm:"type:varchar(10);not null;default:draft;index" json:"status"`
	TotalAmount float64    `gorm:"not null;default:0" json:"total_amount"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Local bookkeeping for the uploader, not part of the mirrored schema.
	Synced bool `gorm:"default:false" json:"-"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// SaleItem is one product entry within a sale. UnitPrice is snapshotted
// from the product at add time; Subtotal is denormalized as
// quantity * unit price and maintained by the cart service, not the DB.
type SaleItem struct {
	BaseModel
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	Quantity  int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	Subtotal  float64   `gorm:"not null" json:"subtotal"`
}
