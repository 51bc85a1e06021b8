package repository

import (
	"context"
	"errors"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpeditionFilter defines filters for listing expeditions.
type ExpeditionFilter struct {
	Status      string `form:"status"`
	Destination string `form:"destination"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type ExpeditionRepository interface {
	CreateTx(tx *gorm.DB, exp *model.Expedition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expedition, error)
	List(ctx context.Context, filter ExpeditionFilter) ([]model.Expedition, int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (int64, error)
	NextCodeSeqTx(tx *gorm.DB) (int64, error)
	ItemsByReception(ctx context.Context, receptionID uuid.UUID, includeInactive bool) ([]model.ExpeditionItem, error)
	DB() *gorm.DB
}

type expeditionRepo struct{ db *gorm.DB }

func NewExpeditionRepository(db *gorm.DB) ExpeditionRepository { return &expeditionRepo{db: db} }

func (r *expeditionRepo) CreateTx(tx *gorm.DB, exp *model.Expedition) error {
	return tx.Create(exp).Error
}

func (r *expeditionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expedition, error) {
	var exp model.Expedition
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Reception").
		Preload("Items.Reception.Producer").
		First(&exp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &exp, err
}

func (r *expeditionRepo) List(ctx context.Context, filter ExpeditionFilter) ([]model.Expedition, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Expedition{}).Preload("Items")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Destination != "" {
		q = q.Where("destination ILIKE ?", "%"+filter.Destination+"%")
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

	var expeditions []model.Expedition
	err := q.Order("expedition_date DESC").Offset(offset).Limit(limit).Find(&expeditions).Error
	return expeditions, total, err
}

func (r *expeditionRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (int64, error) {
	res := tx.Model(&model.Expedition{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *expeditionRepo) NextCodeSeqTx(tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.Raw("SELECT nextval('expedition_code_seq')").Scan(&next).Error
	return next, err
}

func (r *expeditionRepo) ItemsByReception(ctx context.Context, receptionID uuid.UUID, includeInactive bool) ([]model.ExpeditionItem, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN expeditions ON expeditions.id = expedition_items.expedition_id").
		Where("expedition_items.reception_id = ?", receptionID).
		Preload("Expedition")
	if !includeInactive {
		q = q.Where("expeditions.status = ?", model.LotActive)
	}
	var items []model.ExpeditionItem
	err := q.Order("expedition_items.created_at ASC").Find(&items).Error
	return items, err
}

func (r *expeditionRepo) DB() *gorm.DB { return r.db }
