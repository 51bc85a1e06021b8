package repository

import (
	"context"
	"database/sql"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementFilter defines filters for listing physical movements.
type MovementFilter struct {
	ReceptionID  *uuid.UUID
	MovementType string
	LocationID   *uuid.UUID
	Page         int
	Limit        int
}

type MovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error)

	// LocatedQuantityTx computes the quantity of a reception currently sitting
	// at a location: inbound sum minus outbound sum over the movement log.
	LocatedQuantityTx(tx *gorm.DB, receptionID, locationID uuid.UUID) (decimal.Decimal, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.Movement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Movement{}).
		Preload("Reception").
		Preload("FromLocation").
		Preload("ToLocation")
	if filter.ReceptionID != nil {
		q = q.Where("reception_id = ?", *filter.ReceptionID)
	}
	if filter.MovementType != "" {
		q = q.Where("movement_type = ?", filter.MovementType)
	}
	if filter.LocationID != nil {
		q = q.Where("from_location_id = ? OR to_location_id = ?", *filter.LocationID, *filter.LocationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.Movement
	err := q.Order("movement_date DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *movementRepo) LocatedQuantityTx(tx *gorm.DB, receptionID, locationID uuid.UUID) (decimal.Decimal, error) {
	var in, out sql.NullString

	err := tx.Model(&model.Movement{}).
		Select("COALESCE(SUM(quantity_kg), 0)").
		Where("reception_id = ? AND to_location_id = ?", receptionID, locationID).
		Scan(&in).Error
	if err != nil {
		return decimal.Zero, err
	}
	err = tx.Model(&model.Movement{}).
		Select("COALESCE(SUM(quantity_kg), 0)").
		Where("reception_id = ? AND from_location_id = ?", receptionID, locationID).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}

	inbound, err := parseNullDecimal(in)
	if err != nil {
		return decimal.Zero, err
	}
	outbound, err := parseNullDecimal(out)
	if err != nil {
		return decimal.Zero, err
	}
	return inbound.Sub(outbound), nil
}

func parseNullDecimal(v sql.NullString) (decimal.Decimal, error) {
	if !v.Valid || v.String == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v.String)
}
