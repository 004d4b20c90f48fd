package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is an opaque blob (receipt photo, usually) tied to a sale record.
type Attachment struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecordID    uuid.UUID `gorm:"column:record_id;type:uuid;not null;index" json:"record_id"`
	Name        string    `gorm:"column:name;type:text;not null" json:"name"`
	ContentType string    `gorm:"column:content_type;type:text" json:"content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes;not null" json:"size_bytes"`
	Data        []byte    `gorm:"column:data;type:blob" json:"data,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
