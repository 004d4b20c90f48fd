package sales

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/pkg/db/models"
)

// Filter narrows record queries. Zero-value fields are ignored.
type Filter struct {
	// Text matches case-insensitively against salesperson, customer,
	// product and license plate.
	Text string
	// Salesperson matches exactly.
	Salesperson string
	// Customer matches case-insensitively as a substring.
	Customer string
	// From and To bound the record timestamp inclusively.
	From *time.Time
	To   *time.Time
}

// Repository manages persistence for sales records and their attachments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, record *models.SaleRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	Update(ctx context.Context, record *models.SaleRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, filter Filter) ([]models.SaleRecord, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.SaleRecord, error)
	FindBySalesperson(ctx context.Context, name string) ([]models.SaleRecord, error)
	FindByCustomer(ctx context.Context, name string) ([]models.SaleRecord, error)
	List(ctx context.Context) ([]models.SaleRecord, error)
	DeleteAll(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	var record models.SaleRecord
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("id = ?", id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Update(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).
		Model(&models.SaleRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"timestamp":     record.Timestamp,
			"salesperson":   record.Salesperson,
			"customer":      record.Customer,
			"license_plate": record.LicensePlate,
			"product":       record.Product,
			"total_amount":  record.TotalAmount,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("record_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.SaleRecord{}).Error
}

func (r *repository) Query(ctx context.Context, filter Filter) ([]models.SaleRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.SaleRecord{}).Preload("Attachments")

	if filter.Text != "" {
		needle := "%" + strings.ToLower(filter.Text) + "%"
		q = q.Where(
			"lower(salesperson) LIKE ? OR lower(customer) LIKE ? OR lower(product) LIKE ? OR lower(license_plate) LIKE ?",
			needle, needle, needle, needle,
		)
	}
	if filter.Salesperson != "" {
		q = q.Where("salesperson = ?", filter.Salesperson)
	}
	if filter.Customer != "" {
		q = q.Where("lower(customer) LIKE ?", "%"+strings.ToLower(filter.Customer)+"%")
	}
	if filter.From != nil {
		q = q.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("timestamp <= ?", *filter.To)
	}

	var records []models.SaleRecord
	if err := q.Order("timestamp DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) FindBetween(ctx context.Context, from, to time.Time) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("timestamp ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) FindBySalesperson(ctx context.Context, name string) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("salesperson = ?", name).
		Order("timestamp ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) FindByCustomer(ctx context.Context, name string) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("customer = ?", name).
		Order("timestamp ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) List(ctx context.Context) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Preload("Attachments").
		Order("timestamp ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	tx := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.SaleRecord{}).Error
}
