package repository

import (
	"context"
	"time"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	CreateTx(tx *gorm.DB, res *model.LotReservation) error

	// FindActiveByOperationTx returns the unreleased reservations an operation
	// holds, locked FOR UPDATE so concurrent reversals serialize.
	FindActiveByOperationTx(tx *gorm.DB, op model.OperationRef) ([]model.LotReservation, error)

	MarkReleasedTx(tx *gorm.DB, id uuid.UUID) error
	ListByReception(ctx context.Context, receptionID uuid.UUID, includeReleased bool) ([]model.LotReservation, error)
}

type reservationRepo struct{ db *gorm.DB }

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) CreateTx(tx *gorm.DB, res *model.LotReservation) error {
	return tx.Create(res).Error
}

func (r *reservationRepo) FindActiveByOperationTx(tx *gorm.DB, op model.OperationRef) ([]model.LotReservation, error) {
	var reservations []model.LotReservation
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("operation_type = ? AND operation_id = ? AND released_at IS NULL", op.Type, op.ID).
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepo) MarkReleasedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.LotReservation{}).
		Where("id = ? AND released_at IS NULL", id).
		Update("released_at", time.Now()).Error
}

func (r *reservationRepo) ListByReception(ctx context.Context, receptionID uuid.UUID, includeReleased bool) ([]model.LotReservation, error) {
	q := r.db.WithContext(ctx).Where("reception_id = ?", receptionID)
	if !includeReleased {
		q = q.Where("released_at IS NULL")
	}
	var reservations []model.LotReservation
	err := q.Order("created_at ASC").Find(&reservations).Error
	return reservations, err
}
