package repository

import (
	"context"
	"errors"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, loc *model.StorageLocation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StorageLocation, error)
	List(ctx context.Context) ([]model.StorageLocation, error)
	SetOccupiedTx(tx *gorm.DB, id uuid.UUID, occupied bool) error
}

type locationRepo struct{ db *gorm.DB }

func NewLocationRepository(db *gorm.DB) LocationRepository { return &locationRepo{db: db} }

func (r *locationRepo) Create(ctx context.Context, loc *model.StorageLocation) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StorageLocation, error) {
	var loc model.StorageLocation
	err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &loc, err
}

func (r *locationRepo) List(ctx context.Context) ([]model.StorageLocation, error) {
	var locations []model.StorageLocation
	err := r.db.WithContext(ctx).Order("location_code ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) SetOccupiedTx(tx *gorm.DB, id uuid.UUID, occupied bool) error {
	return tx.Model(&model.StorageLocation{}).Where("id = ?", id).Update("occupied", occupied).Error
}
