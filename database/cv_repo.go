package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

// CVRepo stores CV upload records. The table has no uniqueness constraint; callers
// keep it to a single row by deleting old records before inserting.
type CVRepo struct {
	db *gorm.DB
}

func NewCVRepo(db *gorm.DB) *CVRepo {
	return &CVRepo{db}
}

// FindLatest returns the most recent upload, or nil when there is none.
func (r *CVRepo) FindLatest(ctx context.Context) (*models.CVRecord, error) {
	var cv models.CVRecord
	err := r.db.WithContext(ctx).Order("upload_date DESC").First(&cv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *CVRepo) FindAll(ctx context.Context) ([]*models.CVRecord, error) {
	var records []*models.CVRecord
	err := r.db.WithContext(ctx).Order("upload_date DESC").Find(&records).Error
	return records, err
}

func (r *CVRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CVRecord{}).Count(&n).Error
	return n, err
}

func (r *CVRepo) Add(ctx context.Context, cv *models.CVRecord) error {
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *CVRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CVRecord{}, "id = ?", id).Error
}
