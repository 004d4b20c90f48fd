package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washtrack/washtrack-backend/pkg/enums"
)

// SaleRecord is one ledger transaction: a cash sale, a prepaid-balance
// settlement, or a recharge. IDs are UUIDv7 so rapid successive inserts stay
// distinguishable and time-ordered. Salesperson and Customer are name joins;
// authorization against the salesperson roster happens only at creation time.
type SaleRecord struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Timestamp    time.Time         `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Salesperson  string            `gorm:"column:salesperson;type:text;not null;index" json:"salesperson"`
	Customer     string            `gorm:"column:customer;type:text;not null;index" json:"customer"`
	LicensePlate string            `gorm:"column:license_plate;type:text" json:"license_plate"`
	Product      string            `gorm:"column:product;type:text;not null" json:"product"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	PaymentType  enums.PaymentType `gorm:"column:payment_type;type:text;not null" json:"payment_type"`
	Attachments  []Attachment      `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
