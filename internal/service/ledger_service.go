package service

import (
	"context"

	"agrotrace/internal/dto"
	"agrotrace/internal/metrics"
	"agrotrace/internal/model"
	"agrotrace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService is the commercial lot ledger: the single authority over
// consumed_kg. Allocation services never touch the balance directly — they
// reserve and release through here, inside their own transactions.
type LedgerService interface {
	AvailableQuantity(ctx context.Context, receptionID uuid.UUID) (*dto.AvailabilityResponse, error)

	// ReserveTx commits quantity against a reception for an operation and
	// returns the reception's new consumed total. The write is a
	// compare-and-commit: under concurrency exactly the requests that fit the
	// remaining balance succeed, the rest get ErrInsufficientQuantity.
	ReserveTx(tx *gorm.DB, op model.OperationRef, receptionID uuid.UUID, quantity decimal.Decimal) (decimal.Decimal, error)

	// ReleaseTx returns every active reservation the operation holds to the
	// ledger. Releasing an operation with no active reservations is ErrConflict.
	ReleaseTx(tx *gorm.DB, op model.OperationRef) (int, error)

	// Reservations lists the ledger entries recorded against a reception,
	// including released ones when includeReleased is set.
	Reservations(ctx context.Context, receptionID uuid.UUID, includeReleased bool) (*dto.ReservationListResponse, error)
}

type ledgerService struct {
	receptions   repository.ReceptionRepository
	reservations repository.ReservationRepository
}

func NewLedgerService(receptions repository.ReceptionRepository, reservations repository.ReservationRepository) LedgerService {
	return &ledgerService{receptions: receptions, reservations: reservations}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *ledgerService) AvailableQuantity(ctx context.Context, receptionID uuid.UUID) (*dto.AvailabilityResponse, error) {
	rec, err := s.receptions.FindByID(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		ReceptionID:   rec.ID.String(),
		ReceptionCode: rec.ReceptionCode,
		Status:        rec.Status,
		QuantityKg:    rec.QuantityKg,
		ConsumedKg:    rec.ConsumedKg,
		AvailableKg:   rec.AvailableKg(),
	}, nil
}

func (s *ledgerService) ReserveTx(tx *gorm.DB, op model.OperationRef, receptionID uuid.UUID, quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, model.Validationf("reservation quantity must be positive, got %s", quantity)
	}

	rows, err := s.receptions.ConsumeTx(tx, receptionID, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if rows == 0 {
		// The conditional write lost: classify why so the caller gets the
		// right error kind instead of a blanket failure.
		rec, ferr := s.receptions.FindByIDTx(tx, receptionID)
		if ferr != nil {
			return decimal.Zero, ferr
		}
		if rec.Status != model.ReceptionApproved {
			return decimal.Zero, model.Validationf("reception %s is %s, only approved lots can be allocated", rec.ReceptionCode, rec.Status)
		}
		metrics.InsufficientTotal.Inc()
		log.Warn().
			Str("reception_id", receptionID.String()).
			Str("requested_kg", quantity.String()).
			Str("available_kg", rec.AvailableKg().String()).
			Msg("reservation rejected: insufficient balance")
		return decimal.Zero, model.ErrInsufficientQuantity
	}

	res := &model.LotReservation{
		OperationType: op.Type,
		OperationID:   op.ID,
		ReceptionID:   receptionID,
		QuantityKg:    quantity,
	}
	if err := s.reservations.CreateTx(tx, res); err != nil {
		return decimal.Zero, err
	}

	// Re-read inside the transaction so the returned total reflects this
	// write plus any earlier ones in the same operation.
	rec, err := s.receptions.FindByIDTx(tx, receptionID)
	if err != nil {
		return decimal.Zero, err
	}

	metrics.ReservationsTotal.WithLabelValues(op.Type).Inc()
	return rec.ConsumedKg, nil
}

func (s *ledgerService) Reservations(ctx context.Context, receptionID uuid.UUID, includeReleased bool) (*dto.ReservationListResponse, error) {
	if _, err := s.receptions.FindByID(ctx, receptionID); err != nil {
		return nil, err
	}
	entries, err := s.reservations.ListByReception(ctx, receptionID, includeReleased)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReservationListResponse{
		ReceptionID:  receptionID.String(),
		Reservations: make([]dto.ReservationResponse, 0, len(entries)),
		Total:        len(entries),
	}
	for _, res := range entries {
		resp.Reservations = append(resp.Reservations, dto.ReservationResponse{
			ID:            res.ID.String(),
			OperationType: res.OperationType,
			OperationID:   res.OperationID.String(),
			QuantityKg:    res.QuantityKg,
			ReleasedAt:    res.ReleasedAt,
			CreatedAt:     res.CreatedAt,
		})
	}
	return resp, nil
}

func (s *ledgerService) ReleaseTx(tx *gorm.DB, op model.OperationRef) (int, error) {
	active, err := s.reservations.FindActiveByOperationTx(tx, op)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		return 0, model.ErrConflict
	}

	for _, res := range active {
		rows, err := s.receptions.ReleaseConsumedTx(tx, res.ReceptionID, res.QuantityKg)
		if err != nil {
			return 0, err
		}
		if rows == 0 {
			// The ledger no longer holds what this reservation claims.
			// Something corrupted the balance elsewhere; abort rather than
			// silently under-credit.
			log.Error().
				Str("reservation_id", res.ID.String()).
				Str("reception_id", res.ReceptionID.String()).
				Str("quantity_kg", res.QuantityKg.String()).
				Msg("release would over-credit the ledger, aborting")
			return 0, model.ErrTxAbort
		}
		if err := s.reservations.MarkReleasedTx(tx, res.ID); err != nil {
			return 0, err
		}
	}

	metrics.ReleasesTotal.WithLabelValues(op.Type).Add(float64(len(active)))
	return len(active), nil
}
