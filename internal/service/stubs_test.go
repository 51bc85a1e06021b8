package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"agrotrace/internal/model"
	"agrotrace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ReceptionRepository stub ───────────────────────────────────────

type stubReceptionRepo struct {
	mu         sync.Mutex
	receptions map[uuid.UUID]*model.Reception
	seq        int64
}

func newStubReceptionRepo() *stubReceptionRepo {
	return &stubReceptionRepo{receptions: make(map[uuid.UUID]*model.Reception)}
}

func (r *stubReceptionRepo) add(rec *model.Reception) *model.Reception {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.receptions[rec.ID] = rec
	return rec
}

func (r *stubReceptionRepo) Create(_ context.Context, rec *model.Reception) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(rec)
	return nil
}

func (r *stubReceptionRepo) CreateTx(_ *gorm.DB, rec *model.Reception) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(rec)
	return nil
}

func (r *stubReceptionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Reception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receptions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *stubReceptionRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Reception, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubReceptionRepo) List(_ context.Context, filter repository.ReceptionFilter) ([]model.Reception, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Reception
	for _, rec := range r.receptions {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

func (r *stubReceptionRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string, approvedAt *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receptions[id]
	if !ok || rec.Status != from {
		return 0, nil
	}
	rec.Status = to
	rec.ApprovedAt = approvedAt
	return 1, nil
}

func (r *stubReceptionRepo) ConsumeTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receptions[id]
	if !ok {
		return 0, nil
	}
	if rec.Status != model.ReceptionApproved {
		return 0, nil
	}
	if rec.ConsumedKg.Add(amount).GreaterThan(rec.QuantityKg) {
		return 0, nil
	}
	rec.ConsumedKg = rec.ConsumedKg.Add(amount)
	return 1, nil
}

func (r *stubReceptionRepo) ReleaseConsumedTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receptions[id]
	if !ok || rec.ConsumedKg.LessThan(amount) {
		return 0, nil
	}
	rec.ConsumedKg = rec.ConsumedKg.Sub(amount)
	return 1, nil
}

func (r *stubReceptionRepo) NextCodeSeqTx(_ *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *stubReceptionRepo) DB() *gorm.DB { return nil }

// ── In-memory ReservationRepository stub ─────────────────────────────────────

type stubReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*model.LotReservation
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{reservations: make(map[uuid.UUID]*model.LotReservation)}
}

func (r *stubReservationRepo) CreateTx(_ *gorm.DB, res *model.LotReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.CreatedAt = time.Now()
	r.reservations[res.ID] = res
	return nil
}

func (r *stubReservationRepo) FindActiveByOperationTx(_ *gorm.DB, op model.OperationRef) ([]model.LotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LotReservation
	for _, res := range r.reservations {
		if res.OperationType == op.Type && res.OperationID == op.ID && res.ReleasedAt == nil {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *stubReservationRepo) MarkReleasedTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.reservations[id]; ok && res.ReleasedAt == nil {
		now := time.Now()
		res.ReleasedAt = &now
	}
	return nil
}

func (r *stubReservationRepo) ListByReception(_ context.Context, receptionID uuid.UUID, includeReleased bool) ([]model.LotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LotReservation
	for _, res := range r.reservations {
		if res.ReceptionID != receptionID {
			continue
		}
		if !includeReleased && res.ReleasedAt != nil {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

// ── In-memory ProducerRepository stub ────────────────────────────────────────

type stubProducerRepo struct {
	mu        sync.Mutex
	producers map[uuid.UUID]*model.Producer
}

func newStubProducerRepo() *stubProducerRepo {
	return &stubProducerRepo{producers: make(map[uuid.UUID]*model.Producer)}
}

func (r *stubProducerRepo) add(p *model.Producer) *model.Producer {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.producers[p.ID] = p
	return p
}

func (r *stubProducerRepo) Create(_ context.Context, p *model.Producer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(p)
	return nil
}

func (r *stubProducerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.producers[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProducerRepo) List(_ context.Context) ([]model.Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Producer
	for _, p := range r.producers {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProducerRepo) Update(_ context.Context, p *model.Producer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.producers[p.ID] = p
	return nil
}

func (r *stubProducerRepo) FindExpiringWithin(_ context.Context, window time.Duration) ([]model.Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []model.Producer
	for _, p := range r.producers {
		if p.Active && p.CertificateExpiry.After(now) && !p.CertificateExpiry.After(now.Add(window)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ── In-memory ConsolidationRepository stub ───────────────────────────────────

type stubConsolidationRepo struct {
	mu   sync.Mutex
	lots map[uuid.UUID]*model.ConsolidatedLot
	recs *stubReceptionRepo
	seq  int64
}

func newStubConsolidationRepo(recs *stubReceptionRepo) *stubConsolidationRepo {
	return &stubConsolidationRepo{lots: make(map[uuid.UUID]*model.ConsolidatedLot), recs: recs}
}

func (r *stubConsolidationRepo) CreateTx(_ *gorm.DB, lot *model.ConsolidatedLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}
	for i := range lot.Items {
		if lot.Items[i].ID == uuid.Nil {
			lot.Items[i].ID = uuid.New()
		}
		lot.Items[i].ConsolidatedLotID = lot.ID
	}
	r.lots[lot.ID] = lot
	return nil
}

func (r *stubConsolidationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ConsolidatedLot, error) {
	r.mu.Lock()
	lot, ok := r.lots[id]
	r.mu.Unlock()
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *lot
	cp.Items = make([]model.ConsolidatedLotItem, len(lot.Items))
	copy(cp.Items, lot.Items)
	for i := range cp.Items {
		if rec, err := r.recs.FindByID(context.Background(), cp.Items[i].ReceptionID); err == nil {
			cp.Items[i].Reception = rec
		}
	}
	return &cp, nil
}

func (r *stubConsolidationRepo) List(_ context.Context, filter repository.ConsolidationFilter) ([]model.ConsolidatedLot, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ConsolidatedLot
	for _, lot := range r.lots {
		if filter.Status != "" && lot.Status != filter.Status {
			continue
		}
		out = append(out, *lot)
	}
	return out, int64(len(out)), nil
}

func (r *stubConsolidationRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok || lot.Status != from {
		return 0, nil
	}
	lot.Status = to
	return 1, nil
}

func (r *stubConsolidationRepo) NextCodeSeqTx(_ *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *stubConsolidationRepo) ItemsByReception(_ context.Context, receptionID uuid.UUID, includeInactive bool) ([]model.ConsolidatedLotItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ConsolidatedLotItem
	for _, lot := range r.lots {
		if !includeInactive && lot.Status != model.LotActive {
			continue
		}
		for _, item := range lot.Items {
			if item.ReceptionID == receptionID {
				cp := item
				lotCp := *lot
				cp.Lot = &lotCp
				out = append(out, cp)
			}
		}
	}
	return out, nil
}

func (r *stubConsolidationRepo) DB() *gorm.DB { return nil }

// ── In-memory ExpeditionRepository stub ──────────────────────────────────────

type stubExpeditionRepo struct {
	mu          sync.Mutex
	expeditions map[uuid.UUID]*model.Expedition
	recs        *stubReceptionRepo
	seq         int64
}

func newStubExpeditionRepo(recs *stubReceptionRepo) *stubExpeditionRepo {
	return &stubExpeditionRepo{expeditions: make(map[uuid.UUID]*model.Expedition), recs: recs}
}

func (r *stubExpeditionRepo) all() []*model.Expedition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Expedition, 0, len(r.expeditions))
	for _, exp := range r.expeditions {
		out = append(out, exp)
	}
	return out
}

func (r *stubExpeditionRepo) CreateTx(_ *gorm.DB, exp *model.Expedition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if exp.ID == uuid.Nil {
		exp.ID = uuid.New()
	}
	for i := range exp.Items {
		if exp.Items[i].ID == uuid.Nil {
			exp.Items[i].ID = uuid.New()
		}
		exp.Items[i].ExpeditionID = exp.ID
	}
	r.expeditions[exp.ID] = exp
	return nil
}

func (r *stubExpeditionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expedition, error) {
	r.mu.Lock()
	exp, ok := r.expeditions[id]
	r.mu.Unlock()
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *exp
	cp.Items = make([]model.ExpeditionItem, len(exp.Items))
	copy(cp.Items, exp.Items)
	for i := range cp.Items {
		if rec, err := r.recs.FindByID(context.Background(), cp.Items[i].ReceptionID); err == nil {
			cp.Items[i].Reception = rec
		}
	}
	return &cp, nil
}

func (r *stubExpeditionRepo) List(_ context.Context, filter repository.ExpeditionFilter) ([]model.Expedition, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Expedition
	for _, exp := range r.expeditions {
		if filter.Status != "" && exp.Status != filter.Status {
			continue
		}
		out = append(out, *exp)
	}
	return out, int64(len(out)), nil
}

func (r *stubExpeditionRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.expeditions[id]
	if !ok || exp.Status != from {
		return 0, nil
	}
	exp.Status = to
	return 1, nil
}

func (r *stubExpeditionRepo) NextCodeSeqTx(_ *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *stubExpeditionRepo) ItemsByReception(_ context.Context, receptionID uuid.UUID, includeInactive bool) ([]model.ExpeditionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ExpeditionItem
	for _, exp := range r.expeditions {
		if !includeInactive && exp.Status != model.LotActive {
			continue
		}
		for _, item := range exp.Items {
			if item.ReceptionID == receptionID {
				cp := item
				expCp := *exp
				cp.Expedition = &expCp
				out = append(out, cp)
			}
		}
	}
	return out, nil
}

func (r *stubExpeditionRepo) DB() *gorm.DB { return nil }

// ── In-memory PositionRepository stub ────────────────────────────────────────

type stubPositionRepo struct {
	mu        sync.Mutex
	positions map[uuid.UUID]*model.LotPosition // keyed by reception id
}

func newStubPositionRepo() *stubPositionRepo {
	return &stubPositionRepo{positions: make(map[uuid.UUID]*model.LotPosition)}
}

func (r *stubPositionRepo) UpsertTx(_ *gorm.DB, pos *model.LotPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pos.ID == uuid.Nil {
		pos.ID = uuid.New()
	}
	r.positions[pos.ReceptionID] = pos
	return nil
}

func (r *stubPositionRepo) FindByReception(_ context.Context, receptionID uuid.UUID) (*model.LotPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.positions[receptionID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *pos
	return &cp, nil
}

func (r *stubPositionRepo) List(_ context.Context, locationID *uuid.UUID) ([]model.LotPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LotPosition
	for _, pos := range r.positions {
		if locationID != nil && pos.CurrentLocationID != *locationID {
			continue
		}
		out = append(out, *pos)
	}
	return out, nil
}

// ── In-memory LocationRepository stub ────────────────────────────────────────

type stubLocationRepo struct {
	mu        sync.Mutex
	locations map[uuid.UUID]*model.StorageLocation
}

func newStubLocationRepo() *stubLocationRepo {
	return &stubLocationRepo{locations: make(map[uuid.UUID]*model.StorageLocation)}
}

func (r *stubLocationRepo) add(loc *model.StorageLocation) *model.StorageLocation {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	r.locations[loc.ID] = loc
	return loc
}

func (r *stubLocationRepo) Create(_ context.Context, loc *model.StorageLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(loc)
	return nil
}

func (r *stubLocationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.locations[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func (r *stubLocationRepo) List(_ context.Context) ([]model.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StorageLocation
	for _, loc := range r.locations {
		out = append(out, *loc)
	}
	return out, nil
}

func (r *stubLocationRepo) SetOccupiedTx(_ *gorm.DB, id uuid.UUID, occupied bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.locations[id]; ok {
		loc.Occupied = occupied
	}
	return nil
}

// ── In-memory MovementRepository stub ────────────────────────────────────────

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []*model.Movement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.Movement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Movement
	for _, m := range r.movements {
		if filter.ReceptionID != nil && m.ReceptionID != *filter.ReceptionID {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) LocatedQuantityTx(_ *gorm.DB, receptionID, locationID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, m := range r.movements {
		if m.ReceptionID != receptionID {
			continue
		}
		if m.ToLocationID != nil && *m.ToLocationID == locationID {
			total = total.Add(m.QuantityKg)
		}
		if m.FromLocationID != nil && *m.FromLocationID == locationID {
			total = total.Sub(m.QuantityKg)
		}
	}
	return total, nil
}

// ── Shared fixtures ──────────────────────────────────────────────────────────

func kg(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func approvedReception(recs *stubReceptionRepo, producer *model.Producer, productType, quantity string) *model.Reception {
	now := time.Now()
	recs.mu.Lock()
	defer recs.mu.Unlock()
	recs.seq++
	return recs.add(&model.Reception{
		ReceptionCode: "REC-TEST-" + strings.ToUpper(uuid.NewString()[:8]),
		ProducerID:    producer.ID,
		Producer:      producer,
		ProductType:   productType,
		QuantityKg:    kg(quantity),
		ConsumedKg:    decimal.Zero,
		ReceptionDate: now,
		Status:        model.ReceptionApproved,
		ApprovedAt:    &now,
	})
}
