package service

import (
	"context"
	"sort"

	"agrotrace/internal/dto"
	"agrotrace/internal/model"
	"agrotrace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trace target kinds.
const (
	TraceConsolidation = "consolidation"
	TraceExpedition    = "expedition"
)

// TraceabilityService resolves the chain in both directions: forward from a
// reception to every consolidation and expedition that drew from it, backward
// from a shippable unit to its source receptions and producers. Inactive
// operations are hidden by default and included on request, so an audit can
// see reversed history while day-to-day lookups stay clean.
type TraceabilityService interface {
	TraceForward(ctx context.Context, receptionID uuid.UUID, includeInactive bool) (*dto.TraceForwardResponse, error)
	TraceBackward(ctx context.Context, kind string, id uuid.UUID, includeInactive bool) (*dto.TraceBackwardResponse, error)
	LabelPayload(ctx context.Context, kind string, id uuid.UUID) (*dto.LabelPayload, error)
}

type traceabilityService struct {
	receptions     repository.ReceptionRepository
	consolidations repository.ConsolidationRepository
	expeditions    repository.ExpeditionRepository
}

func NewTraceabilityService(
	receptions repository.ReceptionRepository,
	consolidations repository.ConsolidationRepository,
	expeditions repository.ExpeditionRepository,
) TraceabilityService {
	return &traceabilityService{
		receptions:     receptions,
		consolidations: consolidations,
		expeditions:    expeditions,
	}
}

func (s *traceabilityService) TraceForward(ctx context.Context, receptionID uuid.UUID, includeInactive bool) (*dto.TraceForwardResponse, error) {
	rec, err := s.receptions.FindByID(ctx, receptionID)
	if err != nil {
		return nil, err
	}

	consItems, err := s.consolidations.ItemsByReception(ctx, receptionID, includeInactive)
	if err != nil {
		return nil, err
	}
	expItems, err := s.expeditions.ItemsByReception(ctx, receptionID, includeInactive)
	if err != nil {
		return nil, err
	}

	events := make([]dto.TraceEvent, 0, len(consItems)+len(expItems))
	for _, item := range consItems {
		if item.Lot == nil {
			continue
		}
		detail := ""
		if item.Lot.ClientName != nil {
			detail = *item.Lot.ClientName
		}
		events = append(events, dto.TraceEvent{
			Kind:       TraceConsolidation,
			ID:         item.ConsolidatedLotID.String(),
			Code:       item.Lot.ConsolidationCode,
			Status:     item.Lot.Status,
			QuantityKg: item.QuantityUsedKg,
			Date:       item.Lot.ConsolidationDate.Format(dateLayout),
			Detail:     detail,
		})
	}
	for _, item := range expItems {
		if item.Expedition == nil {
			continue
		}
		events = append(events, dto.TraceEvent{
			Kind:       TraceExpedition,
			ID:         item.ExpeditionID.String(),
			Code:       item.Expedition.ExpeditionCode,
			Status:     item.Expedition.Status,
			QuantityKg: item.QuantityKg,
			Date:       item.Expedition.ExpeditionDate.Format(dateLayout),
			Detail:     item.Expedition.Destination,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Code < events[j].Code
	})

	resp := &dto.TraceForwardResponse{
		ReceptionID:     rec.ID.String(),
		ReceptionCode:   rec.ReceptionCode,
		IncludeInactive: includeInactive,
		Events:          events,
	}
	if rec.Producer != nil {
		resp.ProducerName = rec.Producer.Name
	}
	return resp, nil
}

func (s *traceabilityService) TraceBackward(ctx context.Context, kind string, id uuid.UUID, includeInactive bool) (*dto.TraceBackwardResponse, error) {
	switch kind {
	case TraceConsolidation:
		lot, err := s.consolidations.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if lot.Status == model.LotInactive && !includeInactive {
			return nil, model.ErrNotFound
		}
		resp := &dto.TraceBackwardResponse{
			Kind:   TraceConsolidation,
			ID:     lot.ID.String(),
			Code:   lot.ConsolidationCode,
			Status: lot.Status,
		}
		for _, item := range lot.Items {
			resp.Origins = append(resp.Origins, traceOrigin(item.Reception, item.QuantityUsedKg))
		}
		return resp, nil

	case TraceExpedition:
		exp, err := s.expeditions.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if exp.Status == model.LotInactive && !includeInactive {
			return nil, model.ErrNotFound
		}
		resp := &dto.TraceBackwardResponse{
			Kind:   TraceExpedition,
			ID:     exp.ID.String(),
			Code:   exp.ExpeditionCode,
			Status: exp.Status,
		}
		for _, item := range exp.Items {
			resp.Origins = append(resp.Origins, traceOrigin(item.Reception, item.QuantityKg))
		}
		return resp, nil

	default:
		return nil, model.Validationf("unknown trace kind: %s", kind)
	}
}

// LabelPayload condenses the backward trace into label fields. Labels exist
// only for active units, so a reversed target resolves as not found.
func (s *traceabilityService) LabelPayload(ctx context.Context, kind string, id uuid.UUID) (*dto.LabelPayload, error) {
	trace, err := s.TraceBackward(ctx, kind, id, false)
	if err != nil {
		return nil, err
	}

	payload := &dto.LabelPayload{
		Code: trace.Code,
		Kind: trace.Kind,
	}

	switch kind {
	case TraceConsolidation:
		lot, err := s.consolidations.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		payload.ProductType = lot.ProductType
		payload.TotalKg = lot.TotalQuantityKg.String()
		payload.Date = lot.ConsolidationDate.Format(dateLayout)
	case TraceExpedition:
		exp, err := s.expeditions.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		payload.TotalKg = exp.TotalWeightKg.String()
		payload.Date = exp.ExpeditionDate.Format(dateLayout)
	}

	ggns := make(map[string]bool)
	for _, origin := range trace.Origins {
		payload.Origins = append(payload.Origins, origin.ReceptionCode)
		if origin.GGN != nil && !ggns[*origin.GGN] {
			ggns[*origin.GGN] = true
			payload.GGNs = append(payload.GGNs, *origin.GGN)
		}
	}
	return payload, nil
}

func traceOrigin(rec *model.Reception, quantity decimal.Decimal) dto.TraceOrigin {
	origin := dto.TraceOrigin{QuantityKg: quantity}
	if rec == nil {
		return origin
	}
	origin.ReceptionID = rec.ID.String()
	origin.ReceptionCode = rec.ReceptionCode
	origin.ProducerID = rec.ProducerID.String()
	origin.ProductType = rec.ProductType
	if rec.HarvestDate != nil {
		hd := rec.HarvestDate.Format(dateLayout)
		origin.HarvestDate = &hd
	}
	if rec.Producer != nil {
		origin.ProducerName = rec.Producer.Name
		origin.GGN = rec.Producer.GGN
		origin.CertificateExpiry = rec.Producer.CertificateExpiry.Format(dateLayout)
	}
	return origin
}
