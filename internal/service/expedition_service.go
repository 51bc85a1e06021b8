package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrotrace/internal/dto"
	"agrotrace/internal/model"
	"agrotrace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpeditionService creates outbound shipments. Same all-or-nothing ledger
// semantics as consolidation, plus two expedition-only gates: every reception
// must have a known physical position, and a GGN-declared shipment requires a
// valid certificate for every producer at the expedition date.
type ExpeditionService interface {
	Create(ctx context.Context, req dto.CreateExpeditionRequest) (*dto.ExpeditionResponse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.ExpeditionResponse, error)
	List(ctx context.Context, filter repository.ExpeditionFilter) (*dto.ExpeditionListResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type expeditionService struct {
	repo          repository.ExpeditionRepository
	receptions    repository.ReceptionRepository
	positions     repository.PositionRepository
	ledger        LedgerService
	certification CertificationService
}

func NewExpeditionService(
	repo repository.ExpeditionRepository,
	receptions repository.ReceptionRepository,
	positions repository.PositionRepository,
	ledger LedgerService,
	certification CertificationService,
) ExpeditionService {
	return &expeditionService{
		repo:          repo,
		receptions:    receptions,
		positions:     positions,
		ledger:        ledger,
		certification: certification,
	}
}

func (s *expeditionService) Create(ctx context.Context, req dto.CreateExpeditionRequest) (*dto.ExpeditionResponse, error) {
	expeditionDate, err := time.Parse(dateLayout, req.ExpeditionDate)
	if err != nil {
		return nil, model.Validationf("invalid expedition_date %q, expected YYYY-MM-DD", req.ExpeditionDate)
	}

	lines, err := resolveAllocationItems(ctx, s.receptions, req.Items)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		// A lot nobody ever placed in the warehouse cannot be shipped.
		if _, err := s.positions.FindByReception(ctx, l.reception.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.Validationf("reception %s has no recorded warehouse position", l.reception.ReceptionCode)
			}
			return nil, err
		}

		if req.DeclaresGGN {
			if l.reception.Producer == nil {
				return nil, fmt.Errorf("reception %s loaded without producer", l.reception.ReceptionCode)
			}
			if err := s.certification.CheckProducer(l.reception.Producer, expeditionDate); err != nil {
				return nil, err
			}
		}
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.quantity)
	}

	var exp model.Expedition
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, err := s.repo.NextCodeSeqTx(tx)
		if err != nil {
			return err
		}

		exp = model.Expedition{
			ExpeditionCode: fmt.Sprintf("EXP-%03d", seq),
			Destination:    req.Destination,
			ExpeditionDate: expeditionDate,
			TotalWeightKg:  total,
			Status:         model.LotActive,
			DeclaresGGN:    req.DeclaresGGN,
			Transporter:    req.Transporter,
			VehiclePlate:   req.VehiclePlate,
			Notes:          req.Notes,
		}
		for _, l := range lines {
			exp.Items = append(exp.Items, model.ExpeditionItem{
				ReceptionID:  l.reception.ID,
				QuantityKg:   l.quantity,
				LotReference: l.reception.LotNumber,
			})
		}
		if err := s.repo.CreateTx(tx, &exp); err != nil {
			return err
		}

		op := model.OperationRef{Type: model.OpExpedition, ID: exp.ID}
		for _, l := range lines {
			if _, err := s.ledger.ReserveTx(tx, op, l.reception.ID, l.quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("expedition_id", exp.ID.String()).
		Str("code", exp.ExpeditionCode).
		Str("destination", exp.Destination).
		Str("total_kg", total.String()).
		Bool("declares_ggn", exp.DeclaresGGN).
		Msg("expedition created")

	return s.FindByID(ctx, exp.ID)
}

func (s *expeditionService) FindByID(ctx context.Context, id uuid.UUID) (*dto.ExpeditionResponse, error) {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return expeditionToResponse(exp), nil
}

func (s *expeditionService) List(ctx context.Context, filter repository.ExpeditionFilter) (*dto.ExpeditionListResponse, error) {
	expeditions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ExpeditionListResponse{
		Data:  make([]dto.ExpeditionResponse, 0, len(expeditions)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range expeditions {
		resp.Data = append(resp.Data, *expeditionToResponse(&expeditions[i]))
	}
	return resp, nil
}

func (s *expeditionService) Delete(ctx context.Context, id uuid.UUID) error {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if exp.Status == model.LotInactive {
		return model.ErrConflict
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateStatusTx(tx, id, model.LotActive, model.LotInactive)
		if err != nil {
			return err
		}
		if rows == 0 {
			return model.ErrConflict
		}

		released, err := s.ledger.ReleaseTx(tx, model.OperationRef{Type: model.OpExpedition, ID: id})
		if err != nil {
			return err
		}

		log.Info().
			Str("expedition_id", id.String()).
			Str("code", exp.ExpeditionCode).
			Int("released", released).
			Msg("expedition cancelled, reservations returned")
		return nil
	})
}

func expeditionToResponse(exp *model.Expedition) *dto.ExpeditionResponse {
	resp := &dto.ExpeditionResponse{
		ID:             exp.ID.String(),
		ExpeditionCode: exp.ExpeditionCode,
		Destination:    exp.Destination,
		ExpeditionDate: exp.ExpeditionDate.Format(dateLayout),
		TotalWeightKg:  exp.TotalWeightKg,
		Status:         exp.Status,
		DeclaresGGN:    exp.DeclaresGGN,
		Transporter:    exp.Transporter,
		VehiclePlate:   exp.VehiclePlate,
	}
	for _, item := range exp.Items {
		ir := dto.ExpeditionItemResponse{
			ReceptionID: item.ReceptionID.String(),
			QuantityKg:  item.QuantityKg,
		}
		if item.Reception != nil {
			ir.ReceptionCode = item.Reception.ReceptionCode
			if item.Reception.Producer != nil {
				ir.ProducerName = item.Reception.Producer.Name
			}
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
