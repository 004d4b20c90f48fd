package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washtrack/washtrack-backend/pkg/enums"
)

// BalanceEntry is one immutable line in a customer's transaction history.
// Mistakes are fixed with a correcting entry, never by editing history.
type BalanceEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	Kind        enums.EntryKind `gorm:"column:kind;type:text;not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
