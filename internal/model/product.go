package model

import "github.com/google/uuid"

// Product is a sellable catalog item. Price and stock are owned by the
// backend; the terminal snapshots the price onto a line item at add time
// and never decrements stock.
type Product struct {
	BaseModel
	Name       string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price      float64    `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	Stock      int        `gorm:"default:0" json:"stock"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
}
