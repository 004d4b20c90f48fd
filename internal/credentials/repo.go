package credentials

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/pkg/db/models"
)

// Repository manages persistence for the salesperson roster.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByName(ctx context.Context, name string) (*models.Salesperson, error)
	Create(ctx context.Context, person *models.Salesperson) error
	UpdatePasswordHash(ctx context.Context, name, hash string) error
	Delete(ctx context.Context, name string) error
	ListNames(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a roster repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Salesperson, error) {
	var person models.Salesperson
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) Create(ctx context.Context, person *models.Salesperson) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *repository) UpdatePasswordHash(ctx context.Context, name, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Salesperson{}).
		Where("name = ?", name).
		Update("password_hash", hash).Error
}

func (r *repository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Salesperson{}).Error
}

func (r *repository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&models.Salesperson{}).
		Order("created_at ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Salesperson{}).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Salesperson{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
