package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Operator represents a cashier provisioned by the backend. The terminal
// only ever reads these rows: login checks the PIN, everything else is
// display. Provisioning and deactivation happen on the remote.
type Operator struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	PINHash  string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// SetPIN hashes and sets the operator's PIN
func (o *Operator) SetPIN(pin string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PINHash = string(hashed)
	return nil
}

// CheckPIN verifies a candidate PIN against the stored hash
func (o *Operator) CheckPIN(pin string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.PINHash), []byte(pin))
	return err == nil
}

// OperatorResponse is used for API responses (without credential material)
type OperatorResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// ToResponse converts Operator to OperatorResponse
func (o *Operator) ToResponse() OperatorResponse {
	return OperatorResponse{
		ID:       o.ID,
		Name:     o.Name,
		IsActive: o.IsActive,
	}
}
