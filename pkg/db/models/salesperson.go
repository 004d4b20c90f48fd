package models

import (
	"time"

	"github.com/google/uuid"
)

// Salesperson is an authorized seller credential. Name is the business key
// the rest of the ledger joins on; records reference it by name, not ID.
type Salesperson struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
