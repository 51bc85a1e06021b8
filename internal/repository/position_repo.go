package repository

import (
	"context"
	"errors"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PositionRepository interface {
	// UpsertTx writes the materialized position for a reception, keyed by
	// reception_id, in the same transaction that appends the movement.
	UpsertTx(tx *gorm.DB, pos *model.LotPosition) error

	FindByReception(ctx context.Context, receptionID uuid.UUID) (*model.LotPosition, error)
	List(ctx context.Context, locationID *uuid.UUID) ([]model.LotPosition, error)
}

type positionRepo struct{ db *gorm.DB }

func NewPositionRepository(db *gorm.DB) PositionRepository { return &positionRepo{db: db} }

func (r *positionRepo) UpsertTx(tx *gorm.DB, pos *model.LotPosition) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "reception_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_location_id", "last_movement_id", "entry_date", "updated_at",
		}),
	}).Create(pos).Error
}

func (r *positionRepo) FindByReception(ctx context.Context, receptionID uuid.UUID) (*model.LotPosition, error) {
	var pos model.LotPosition
	err := r.db.WithContext(ctx).
		Preload("CurrentLocation").
		First(&pos, "reception_id = ?", receptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &pos, err
}

func (r *positionRepo) List(ctx context.Context, locationID *uuid.UUID) ([]model.LotPosition, error) {
	q := r.db.WithContext(ctx).
		Preload("Reception").
		Preload("Reception.Producer").
		Preload("CurrentLocation")
	if locationID != nil {
		q = q.Where("current_location_id = ?", *locationID)
	}
	var positions []model.LotPosition
	err := q.Order("entry_date ASC").Find(&positions).Error
	return positions, err
}
