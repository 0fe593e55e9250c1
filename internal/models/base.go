package models

import (
	"time"

	"cashbook/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for the bookkeeping tables (audit log,
// reminder tasks). Ledger records are not stored row-by-row; see Slot.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
