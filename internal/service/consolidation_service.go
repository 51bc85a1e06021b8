package service

import (
	"context"
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

// ConsolidationService builds shippable consolidated lots out of approved
// receptions. Creation is all-or-nothing: every item reserves its quantity in
// one transaction, and one failed line rolls back the whole lot.
type ConsolidationService interface {
	Create(ctx context.Context, req dto.CreateConsolidationRequest) (*dto.ConsolidationResponse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.ConsolidationResponse, error)
	List(ctx context.Context, filter repository.ConsolidationFilter) (*dto.ConsolidationListResponse, error)

	// Delete soft-deletes the lot and returns every reserved quantity to the
	// ledger. Deleting an already-inactive lot is ErrConflict.
	Delete(ctx context.Context, id uuid.UUID) error
}

type consolidationService struct {
	repo          repository.ConsolidationRepository
	receptions    repository.ReceptionRepository
	ledger        LedgerService
	certification CertificationService
}

func NewConsolidationService(
	repo repository.ConsolidationRepository,
	receptions repository.ReceptionRepository,
	ledger LedgerService,
	certification CertificationService,
) ConsolidationService {
	return &consolidationService{
		repo:          repo,
		receptions:    receptions,
		ledger:        ledger,
		certification: certification,
	}
}

// allocationLine is an item resolved against its reception, ready to reserve.
type allocationLine struct {
	reception *model.Reception
	quantity  decimal.Decimal
}

// resolveAllocationItems validates the request lines outside the transaction:
// parseable IDs, positive quantities, no duplicate receptions, approved
// status. The ledger still re-checks balances inside the transaction, so this
// pre-flight can be optimistic about quantities.
func resolveAllocationItems(ctx context.Context, receptions repository.ReceptionRepository, items []dto.AllocationItemRequest) ([]allocationLine, error) {
	if len(items) == 0 {
		return nil, model.Validationf("at least one allocation item is required")
	}

	seen := make(map[uuid.UUID]bool, len(items))
	lines := make([]allocationLine, 0, len(items))

	for _, item := range items {
		id, err := uuid.Parse(item.ReceptionID)
		if err != nil {
			return nil, model.Validationf("invalid reception_id: %s", item.ReceptionID)
		}
		if seen[id] {
			return nil, model.Validationf("reception %s appears more than once", item.ReceptionID)
		}
		seen[id] = true

		if item.QuantityKg.LessThanOrEqual(decimal.Zero) {
			return nil, model.Validationf("quantity for reception %s must be positive, got %s", item.ReceptionID, item.QuantityKg)
		}

		rec, err := receptions.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec.Status != model.ReceptionApproved {
			return nil, model.Validationf("reception %s is %s, only approved lots can be allocated", rec.ReceptionCode, rec.Status)
		}

		lines = append(lines, allocationLine{reception: rec, quantity: item.QuantityKg})
	}
	return lines, nil
}

func (s *consolidationService) Create(ctx context.Context, req dto.CreateConsolidationRequest) (*dto.ConsolidationResponse, error) {
	lines, err := resolveAllocationItems(ctx, s.receptions, req.Items)
	if err != nil {
		return nil, err
	}

	consolidationDate := time.Now()

	// Product type policy: homogeneous by default, mixed only on request.
	productType := lines[0].reception.ProductType
	for _, l := range lines[1:] {
		if l.reception.ProductType != productType {
			if !req.AllowMixed {
				return nil, model.Validationf("items mix product types %s and %s; set allow_mixed to consolidate them", productType, l.reception.ProductType)
			}
			productType = model.ProductTypeMixed
			break
		}
	}

	// Certification gate. Certified reflects whether every producer passes
	// today regardless of the flag; the flag decides whether failing is fatal.
	certified := true
	for _, l := range lines {
		if l.reception.Producer == nil {
			return nil, fmt.Errorf("reception %s loaded without producer", l.reception.ReceptionCode)
		}
		if err := s.certification.CheckProducer(l.reception.Producer, consolidationDate); err != nil {
			if req.RequireCertification {
				return nil, err
			}
			certified = false
		}
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.quantity)
	}

	var lot model.ConsolidatedLot
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, err := s.repo.NextCodeSeqTx(tx)
		if err != nil {
			return err
		}

		lot = model.ConsolidatedLot{
			ConsolidationCode: fmt.Sprintf("CONS-%s-%03d", consolidationDate.Format("20060102"), seq),
			ClientName:        req.ClientName,
			ClientLotNumber:   req.ClientLotNumber,
			ProductType:       productType,
			TotalQuantityKg:   total,
			Status:            model.LotActive,
			Certified:         certified,
			Notes:             req.Notes,
			ConsolidationDate: consolidationDate,
		}
		for _, l := range lines {
			lot.Items = append(lot.Items, model.ConsolidatedLotItem{
				ReceptionID:    l.reception.ID,
				QuantityUsedKg: l.quantity,
			})
		}
		if err := s.repo.CreateTx(tx, &lot); err != nil {
			return err
		}

		op := model.OperationRef{Type: model.OpConsolidation, ID: lot.ID}
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
		Str("consolidation_id", lot.ID.String()).
		Str("code", lot.ConsolidationCode).
		Str("total_kg", total.String()).
		Int("items", len(lines)).
		Msg("consolidated lot created")

	return s.FindByID(ctx, lot.ID)
}

func (s *consolidationService) FindByID(ctx context.Context, id uuid.UUID) (*dto.ConsolidationResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return consolidationToResponse(lot), nil
}

func (s *consolidationService) List(ctx context.Context, filter repository.ConsolidationFilter) (*dto.ConsolidationListResponse, error) {
	lots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ConsolidationListResponse{
		Data:  make([]dto.ConsolidationResponse, 0, len(lots)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range lots {
		resp.Data = append(resp.Data, *consolidationToResponse(&lots[i]))
	}
	return resp, nil
}

func (s *consolidationService) Delete(ctx context.Context, id uuid.UUID) error {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if lot.Status == model.LotInactive {
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

		released, err := s.ledger.ReleaseTx(tx, model.OperationRef{Type: model.OpConsolidation, ID: id})
		if err != nil {
			return err
		}

		log.Info().
			Str("consolidation_id", id.String()).
			Str("code", lot.ConsolidationCode).
			Int("released", released).
			Msg("consolidated lot deactivated, reservations returned")
		return nil
	})
}

func consolidationToResponse(lot *model.ConsolidatedLot) *dto.ConsolidationResponse {
	resp := &dto.ConsolidationResponse{
		ID:                lot.ID.String(),
		ConsolidationCode: lot.ConsolidationCode,
		ClientName:        lot.ClientName,
		ProductType:       lot.ProductType,
		TotalQuantityKg:   lot.TotalQuantityKg,
		Status:            lot.Status,
		Certified:         lot.Certified,
		ConsolidationDate: lot.ConsolidationDate.Format(dateLayout),
	}
	for _, item := range lot.Items {
		ir := dto.ConsolidationItemResponse{
			ReceptionID:    item.ReceptionID.String(),
			QuantityUsedKg: item.QuantityUsedKg,
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
