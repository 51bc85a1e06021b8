package repository

import (
	"context"
	"errors"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsolidationFilter defines filters for listing consolidated lots.
type ConsolidationFilter struct {
	Status      string `form:"status"`
	ProductType string `form:"product_type"`
	ClientName  string `form:"client_name"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type ConsolidationRepository interface {
	CreateTx(tx *gorm.DB, lot *model.ConsolidatedLot) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ConsolidatedLot, error)
	List(ctx context.Context, filter ConsolidationFilter) ([]model.ConsolidatedLot, int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (int64, error)

	// NextCodeSeqTx pulls the next value of the consolidation code sequence
	// inside the allocation transaction.
	NextCodeSeqTx(tx *gorm.DB) (int64, error)

	// ItemsByReception returns allocation lines referencing a reception,
	// joined with their parent lots; used by the traceability resolver.
	ItemsByReception(ctx context.Context, receptionID uuid.UUID, includeInactive bool) ([]model.ConsolidatedLotItem, error)

	DB() *gorm.DB
}

type consolidationRepo struct{ db *gorm.DB }

func NewConsolidationRepository(db *gorm.DB) ConsolidationRepository {
	return &consolidationRepo{db: db}
}

func (r *consolidationRepo) CreateTx(tx *gorm.DB, lot *model.ConsolidatedLot) error {
	return tx.Create(lot).Error
}

func (r *consolidationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ConsolidatedLot, error) {
	var lot model.ConsolidatedLot
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Reception").
		Preload("Items.Reception.Producer").
		First(&lot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &lot, err
}

func (r *consolidationRepo) List(ctx context.Context, filter ConsolidationFilter) ([]model.ConsolidatedLot, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ConsolidatedLot{}).Preload("Items")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProductType != "" {
		q = q.Where("product_type = ?", filter.ProductType)
	}
	if filter.ClientName != "" {
		q = q.Where("client_name ILIKE ?", "%"+filter.ClientName+"%")
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

	var lots []model.ConsolidatedLot
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&lots).Error
	return lots, total, err
}

func (r *consolidationRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (int64, error) {
	res := tx.Model(&model.ConsolidatedLot{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *consolidationRepo) NextCodeSeqTx(tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.Raw("SELECT nextval('consolidation_code_seq')").Scan(&next).Error
	return next, err
}

func (r *consolidationRepo) ItemsByReception(ctx context.Context, receptionID uuid.UUID, includeInactive bool) ([]model.ConsolidatedLotItem, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN consolidated_lots ON consolidated_lots.id = consolidated_lot_items.consolidated_lot_id").
		Where("consolidated_lot_items.reception_id = ?", receptionID).
		Preload("Lot")
	if !includeInactive {
		q = q.Where("consolidated_lots.status = ?", model.LotActive)
	}
	var items []model.ConsolidatedLotItem
	err := q.Order("consolidated_lot_items.created_at ASC").Find(&items).Error
	return items, err
}

func (r *consolidationRepo) DB() *gorm.DB { return r.db }
