package model

import (
	"time"

	"github.com/google/uuid"
)

// Terminal is the remote-side registration row created by the anonymous
// credential exchange when a terminal first connects. The token is opaque;
// the backend uses it to attribute uploaded sales to a device.
type Terminal struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Token        string     `gorm:"type:varchar(255);not null" json:"-"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}
