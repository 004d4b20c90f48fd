package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer holds a prepaid balance. Balance must always equal the sum of
// credit entries minus the sum of accepted debit entries, and never drops
// below zero.
type Customer struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null" json:"balance"`
	Entries   []BalanceEntry  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
