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
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ReceptionService manages intake events and their pending→approved/rejected
// lifecycle. Approval is the moment a reception becomes allocatable.
type ReceptionService interface {
	Create(ctx context.Context, req dto.CreateReceptionRequest) (*dto.ReceptionResponse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.ReceptionResponse, error)
	List(ctx context.Context, filter repository.ReceptionFilter) (*dto.ReceptionListResponse, error)
	Approve(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
}

type receptionService struct {
	repo      repository.ReceptionRepository
	producers repository.ProducerRepository
}

func NewReceptionService(repo repository.ReceptionRepository, producers repository.ProducerRepository) ReceptionService {
	return &receptionService{repo: repo, producers: producers}
}

func (s *receptionService) Create(ctx context.Context, req dto.CreateReceptionRequest) (*dto.ReceptionResponse, error) {
	producerID, err := uuid.Parse(req.ProducerID)
	if err != nil {
		return nil, model.Validationf("invalid producer_id: %s", req.ProducerID)
	}
	if _, err := s.producers.FindByID(ctx, producerID); err != nil {
		return nil, err
	}

	receptionDate, err := time.Parse(dateLayout, req.ReceptionDate)
	if err != nil {
		return nil, model.Validationf("invalid reception_date %q, expected YYYY-MM-DD", req.ReceptionDate)
	}
	var harvestDate *time.Time
	if req.HarvestDate != nil {
		hd, err := time.Parse(dateLayout, *req.HarvestDate)
		if err != nil {
			return nil, model.Validationf("invalid harvest_date %q, expected YYYY-MM-DD", *req.HarvestDate)
		}
		if hd.After(receptionDate) {
			return nil, model.Validationf("harvest_date cannot be after reception_date")
		}
		harvestDate = &hd
	}

	rec := &model.Reception{
		ProducerID:    producerID,
		ProductType:   req.ProductType,
		QuantityKg:    req.QuantityKg,
		ReceptionDate: receptionDate,
		HarvestDate:   harvestDate,
		LotNumber:     req.LotNumber,
		Notes:         req.Notes,
		Status:        model.ReceptionPending,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, err := s.repo.NextCodeSeqTx(tx)
		if err != nil {
			return err
		}
		rec.ReceptionCode = fmt.Sprintf("REC-%s-%04d", receptionDate.Format("20060102"), seq)
		return s.repo.CreateTx(tx, rec)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("reception_id", rec.ID.String()).
		Str("reception_code", rec.ReceptionCode).
		Str("quantity_kg", rec.QuantityKg.String()).
		Msg("reception registered")

	return receptionToResponse(rec), nil
}

func (s *receptionService) FindByID(ctx context.Context, id uuid.UUID) (*dto.ReceptionResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return receptionToResponse(rec), nil
}

func (s *receptionService) List(ctx context.Context, filter repository.ReceptionFilter) (*dto.ReceptionListResponse, error) {
	receptions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReceptionListResponse{
		Data:  make([]dto.ReceptionResponse, 0, len(receptions)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range receptions {
		resp.Data = append(resp.Data, *receptionToResponse(&receptions[i]))
	}
	return resp, nil
}

// Approve flips pending → approved. Both terminal states reject further
// transitions: a lost race or a repeat call surfaces as ErrConflict.
func (s *receptionService) Approve(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, model.ReceptionApproved)
}

func (s *receptionService) Reject(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, model.ReceptionRejected)
}

func (s *receptionService) transition(ctx context.Context, id uuid.UUID, to string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	var approvedAt *time.Time
	if to == model.ReceptionApproved {
		now := time.Now()
		approvedAt = &now
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateStatusTx(tx, id, model.ReceptionPending, to, approvedAt)
		if err != nil {
			return err
		}
		if rows == 0 {
			return model.ErrConflict
		}
		log.Info().Str("reception_id", id.String()).Str("status", to).Msg("reception status changed")
		return nil
	})
}

func receptionToResponse(rec *model.Reception) *dto.ReceptionResponse {
	resp := &dto.ReceptionResponse{
		ID:            rec.ID.String(),
		ReceptionCode: rec.ReceptionCode,
		ProducerID:    rec.ProducerID.String(),
		ProductType:   rec.ProductType,
		QuantityKg:    rec.QuantityKg,
		ConsumedKg:    rec.ConsumedKg,
		AvailableKg:   rec.AvailableKg(),
		ReceptionDate: rec.ReceptionDate.Format(dateLayout),
		Status:        rec.Status,
	}
	if rec.Producer != nil {
		resp.ProducerName = rec.Producer.Name
	}
	if rec.HarvestDate != nil {
		hd := rec.HarvestDate.Format(dateLayout)
		resp.HarvestDate = &hd
	}
	return resp
}
