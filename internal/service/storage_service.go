package service

import (
	"context"
	"errors"
	"time"

	"agrotrace/internal/dto"
	"agrotrace/internal/metrics"
	"agrotrace/internal/model"
	"agrotrace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StorageService tracks physical placement: the append-only movement log and
// the LotPosition projection derived from it. It is fully independent of the
// commercial ledger — moving a lot never changes consumed_kg and reserving a
// lot never moves it.
type StorageService interface {
	RecordMovement(ctx context.Context, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error)
	Position(ctx context.Context, receptionID uuid.UUID) (*dto.PositionResponse, error)
	ListPositions(ctx context.Context, locationID *uuid.UUID) ([]dto.PositionResponse, error)

	CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*dto.LocationResponse, error)
	ListLocations(ctx context.Context) ([]dto.LocationResponse, error)
}

type storageService struct {
	movements  repository.MovementRepository
	positions  repository.PositionRepository
	locations  repository.LocationRepository
	receptions repository.ReceptionRepository
}

func NewStorageService(
	movements repository.MovementRepository,
	positions repository.PositionRepository,
	locations repository.LocationRepository,
	receptions repository.ReceptionRepository,
) StorageService {
	return &storageService{
		movements:  movements,
		positions:  positions,
		locations:  locations,
		receptions: receptions,
	}
}

func (s *storageService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	receptionID, err := uuid.Parse(req.ReceptionID)
	if err != nil {
		return nil, model.Validationf("invalid reception_id: %s", req.ReceptionID)
	}
	rec, err := s.receptions.FindByID(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	if req.QuantityKg.LessThanOrEqual(decimal.Zero) {
		return nil, model.Validationf("movement quantity must be positive, got %s", req.QuantityKg)
	}

	fromID, toID, err := s.resolveEndpoints(ctx, req)
	if err != nil {
		return nil, err
	}

	movementDate := time.Now()
	if req.MovementDate != nil {
		movementDate, err = time.Parse(dateLayout, *req.MovementDate)
		if err != nil {
			return nil, model.Validationf("invalid movement_date %q, expected YYYY-MM-DD", *req.MovementDate)
		}
	}

	mov := &model.Movement{
		ReceptionID:    receptionID,
		MovementType:   req.MovementType,
		FromLocationID: fromID,
		ToLocationID:   toID,
		QuantityKg:     req.QuantityKg,
		MovementDate:   movementDate,
		Notes:          req.Notes,
	}

	txErr := runTx(ctx, s.receptions.DB(), func(tx *gorm.DB) error {
		if mov.IsOutbound() {
			// An outbound move can only take what the movement log says is
			// actually sitting at the source location.
			located, err := s.movements.LocatedQuantityTx(tx, receptionID, *fromID)
			if err != nil {
				return err
			}
			if located.LessThan(req.QuantityKg) {
				return model.Validationf("only %s kg of %s located at the source, cannot move %s kg",
					located, rec.ReceptionCode, req.QuantityKg)
			}
		}

		if err := s.movements.CreateTx(tx, mov); err != nil {
			return err
		}

		// The projection follows the destination. A pure exit leaves the last
		// known position in place for traceability lookups.
		if toID != nil {
			pos := &model.LotPosition{
				ReceptionID:       receptionID,
				CurrentLocationID: *toID,
				LastMovementID:    &mov.ID,
				EntryDate:         movementDate,
			}
			if err := s.positions.UpsertTx(tx, pos); err != nil {
				return err
			}
			if err := s.locations.SetOccupiedTx(tx, *toID, true); err != nil {
				return err
			}
		}
		if fromID != nil {
			remaining, err := s.movements.LocatedQuantityTx(tx, receptionID, *fromID)
			if err != nil {
				return err
			}
			if remaining.IsZero() {
				if err := s.locations.SetOccupiedTx(tx, *fromID, false); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	metrics.MovementsTotal.WithLabelValues(mov.MovementType).Inc()
	log.Info().
		Str("reception_id", receptionID.String()).
		Str("movement_type", mov.MovementType).
		Str("quantity_kg", mov.QuantityKg.String()).
		Msg("movement recorded")

	return movementToResponse(mov, rec.ReceptionCode, nil, nil), nil
}

// resolveEndpoints enforces the per-type location requirements and verifies
// the referenced locations exist.
func (s *storageService) resolveEndpoints(ctx context.Context, req dto.RecordMovementRequest) (from, to *uuid.UUID, err error) {
	parse := func(raw *string, field string) (*uuid.UUID, error) {
		if raw == nil {
			return nil, nil
		}
		id, err := uuid.Parse(*raw)
		if err != nil {
			return nil, model.Validationf("invalid %s: %s", field, *raw)
		}
		if _, err := s.locations.FindByID(ctx, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.Validationf("%s %s does not exist", field, *raw)
			}
			return nil, err
		}
		return &id, nil
	}

	if from, err = parse(req.FromLocationID, "from_location_id"); err != nil {
		return nil, nil, err
	}
	if to, err = parse(req.ToLocationID, "to_location_id"); err != nil {
		return nil, nil, err
	}

	switch req.MovementType {
	case model.MovementEntrada:
		if to == nil {
			return nil, nil, model.Validationf("entrada requires to_location_id")
		}
	case model.MovementSaida, model.MovementConsolidacao:
		if from == nil {
			return nil, nil, model.Validationf("%s requires from_location_id", req.MovementType)
		}
	case model.MovementTransferencia:
		if from == nil || to == nil {
			return nil, nil, model.Validationf("transferencia requires from_location_id and to_location_id")
		}
		if *from == *to {
			return nil, nil, model.Validationf("transferencia source and destination must differ")
		}
	default:
		return nil, nil, model.Validationf("unknown movement_type: %s", req.MovementType)
	}
	return from, to, nil
}

func (s *storageService) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovementListResponse{
		Data:  make([]dto.MovementResponse, 0, len(movements)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movements {
		m := &movements[i]
		code := ""
		if m.Reception != nil {
			code = m.Reception.ReceptionCode
		}
		resp.Data = append(resp.Data, *movementToResponse(m, code, m.FromLocation, m.ToLocation))
	}
	return resp, nil
}

func (s *storageService) Position(ctx context.Context, receptionID uuid.UUID) (*dto.PositionResponse, error) {
	pos, err := s.positions.FindByReception(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	return positionToResponse(pos), nil
}

func (s *storageService) ListPositions(ctx context.Context, locationID *uuid.UUID) ([]dto.PositionResponse, error) {
	positions, err := s.positions.List(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PositionResponse, 0, len(positions))
	for i := range positions {
		out = append(out, *positionToResponse(&positions[i]))
	}
	return out, nil
}

func (s *storageService) CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	loc := &model.StorageLocation{
		LocationCode:  req.LocationCode,
		Area:          req.Area,
		CapacityUnits: req.CapacityUnits,
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return locationToResponse(loc), nil
}

func (s *storageService) ListLocations(ctx context.Context) ([]dto.LocationResponse, error) {
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		out = append(out, *locationToResponse(&locations[i]))
	}
	return out, nil
}

func movementToResponse(m *model.Movement, receptionCode string, from, to *model.StorageLocation) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:            m.ID.String(),
		ReceptionID:   m.ReceptionID.String(),
		ReceptionCode: receptionCode,
		MovementType:  m.MovementType,
		QuantityKg:    m.QuantityKg,
		MovementDate:  m.MovementDate.Format(dateLayout),
		Notes:         m.Notes,
	}
	if from != nil {
		resp.FromLocation = &from.LocationCode
	}
	if to != nil {
		resp.ToLocation = &to.LocationCode
	}
	return resp
}

func positionToResponse(pos *model.LotPosition) *dto.PositionResponse {
	resp := &dto.PositionResponse{
		ReceptionID: pos.ReceptionID.String(),
		LocationID:  pos.CurrentLocationID.String(),
		EntryDate:   pos.EntryDate.Format(dateLayout),
	}
	if pos.Reception != nil {
		resp.ReceptionCode = pos.Reception.ReceptionCode
		if pos.Reception.Producer != nil {
			resp.ProducerName = pos.Reception.Producer.Name
		}
	}
	if pos.CurrentLocation != nil {
		resp.LocationCode = pos.CurrentLocation.LocationCode
	}
	return resp
}

func locationToResponse(loc *model.StorageLocation) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:            loc.ID.String(),
		LocationCode:  loc.LocationCode,
		Area:          loc.Area,
		CapacityUnits: loc.CapacityUnits,
		Occupied:      loc.Occupied,
	}
}
