package repository

import (
	"context"
	"errors"
	"time"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceptionFilter defines filters for listing receptions.
type ReceptionFilter struct {
	Status      string `form:"status"`
	ProducerID  string `form:"producer_id"`
	ProductType string `form:"product_type"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type ReceptionRepository interface {
	Create(ctx context.Context, rec *model.Reception) error
	CreateTx(tx *gorm.DB, rec *model.Reception) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reception, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Reception, error)
	List(ctx context.Context, filter ReceptionFilter) ([]model.Reception, int64, error)

	// UpdateStatusTx flips status from→to in one conditional write; returns the
	// number of affected rows so callers can detect a lost terminal-state race.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, approvedAt *time.Time) (int64, error)

	// ConsumeTx is the ledger's compare-and-commit: it increments consumed_kg
	// only when the result stays within quantity_kg and the reception is
	// approved. Zero affected rows means the reservation lost.
	ConsumeTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error)

	// ReleaseConsumedTx decrements consumed_kg, guarded so it never goes below
	// zero. Zero affected rows means the release would over-credit.
	ReleaseConsumedTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error)

	// NextCodeSeqTx pulls the next value of the reception code sequence.
	NextCodeSeqTx(tx *gorm.DB) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type receptionRepo struct{ db *gorm.DB }

func NewReceptionRepository(db *gorm.DB) ReceptionRepository { return &receptionRepo{db: db} }

func (r *receptionRepo) Create(ctx context.Context, rec *model.Reception) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *receptionRepo) CreateTx(tx *gorm.DB, rec *model.Reception) error {
	return tx.Create(rec).Error
}

func (r *receptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Reception, error) {
	var rec model.Reception
	err := r.db.WithContext(ctx).Preload("Producer").First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &rec, err
}

func (r *receptionRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Reception, error) {
	var rec model.Reception
	err := tx.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &rec, err
}

func (r *receptionRepo) List(ctx context.Context, filter ReceptionFilter) ([]model.Reception, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Reception{}).Preload("Producer")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProducerID != "" {
		q = q.Where("producer_id = ?", filter.ProducerID)
	}
	if filter.ProductType != "" {
		q = q.Where("product_type = ?", filter.ProductType)
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

	var receptions []model.Reception
	err := q.Order("reception_date DESC").Offset(offset).Limit(limit).Find(&receptions).Error
	return receptions, total, err
}

func (r *receptionRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, approvedAt *time.Time) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}
	res := tx.Model(&model.Reception{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *receptionRepo) ConsumeTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := tx.Model(&model.Reception{}).
		Where("id = ? AND status = ? AND consumed_kg + ? <= quantity_kg", id, model.ReceptionApproved, amount).
		Update("consumed_kg", gorm.Expr("consumed_kg + ?", amount))
	return res.RowsAffected, res.Error
}

func (r *receptionRepo) ReleaseConsumedTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := tx.Model(&model.Reception{}).
		Where("id = ? AND consumed_kg >= ?", id, amount).
		Update("consumed_kg", gorm.Expr("consumed_kg - ?", amount))
	return res.RowsAffected, res.Error
}

func (r *receptionRepo) NextCodeSeqTx(tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.Raw("SELECT nextval('reception_code_seq')").Scan(&next).Error
	return next, err
}

func (r *receptionRepo) DB() *gorm.DB { return r.db }
