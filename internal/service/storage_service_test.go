package service_test

import (
	"context"
	"testing"
	"time"

	"agrotrace/internal/dto"
	"agrotrace/internal/model"
	"agrotrace/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storageFixture struct {
	recs      *stubReceptionRepo
	movements *stubMovementRepo
	positions *stubPositionRepo
	locations *stubLocationRepo
	svc       service.StorageService
	producer  *model.Producer
	locA      *model.StorageLocation
	locB      *model.StorageLocation
}

func newStorageFixture() *storageFixture {
	recs := newStubReceptionRepo()
	movements := newStubMovementRepo()
	positions := newStubPositionRepo()
	locations := newStubLocationRepo()
	svc := service.NewStorageService(movements, positions, locations, recs)

	locations.mu.Lock()
	locA := locations.add(&model.StorageLocation{LocationCode: "A-01", Area: "cold"})
	locB := locations.add(&model.StorageLocation{LocationCode: "B-01", Area: "dry"})
	locations.mu.Unlock()

	return &storageFixture{
		recs:      recs,
		movements: movements,
		positions: positions,
		locations: locations,
		svc:       svc,
		producer: &model.Producer{
			ID:                uuid.New(),
			Name:              "Finca Uno",
			CertificateExpiry: time.Now().AddDate(1, 0, 0),
			Active:            true,
		},
		locA: locA,
		locB: locB,
	}
}

func strptr(s string) *string { return &s }

func TestEntradaCreatesPosition(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")
	ctx := context.Background()

	resp, err := f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:  rec.ID.String(),
		MovementType: model.MovementEntrada,
		ToLocationID: strptr(f.locA.ID.String()),
		QuantityKg:   kg("300.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementEntrada, resp.MovementType)

	pos, err := f.svc.Position(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, f.locA.ID.String(), pos.LocationID)

	loc, err := f.locations.FindByID(ctx, f.locA.ID)
	require.NoError(t, err)
	assert.True(t, loc.Occupied)
}

func TestEntradaRequiresDestination(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")

	_, err := f.svc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		ReceptionID:  rec.ID.String(),
		MovementType: model.MovementEntrada,
		QuantityKg:   kg("300.00"),
	})
	assert.True(t, model.IsValidation(err))
}

func TestTransferenciaMovesPositionAndFreesSource(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")
	ctx := context.Background()

	_, err := f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:  rec.ID.String(),
		MovementType: model.MovementEntrada,
		ToLocationID: strptr(f.locA.ID.String()),
		QuantityKg:   kg("300.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:    rec.ID.String(),
		MovementType:   model.MovementTransferencia,
		FromLocationID: strptr(f.locA.ID.String()),
		ToLocationID:   strptr(f.locB.ID.String()),
		QuantityKg:     kg("300.00"),
	})
	require.NoError(t, err)

	pos, err := f.svc.Position(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, f.locB.ID.String(), pos.LocationID)

	locA, _ := f.locations.FindByID(ctx, f.locA.ID)
	locB, _ := f.locations.FindByID(ctx, f.locB.ID)
	assert.False(t, locA.Occupied, "fully emptied source should be freed")
	assert.True(t, locB.Occupied)
}

func TestTransferenciaSameLocationRejected(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")

	_, err := f.svc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		ReceptionID:    rec.ID.String(),
		MovementType:   model.MovementTransferencia,
		FromLocationID: strptr(f.locA.ID.String()),
		ToLocationID:   strptr(f.locA.ID.String()),
		QuantityKg:     kg("10.00"),
	})
	assert.True(t, model.IsValidation(err))
}

func TestOutboundCannotExceedLocatedQuantity(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")
	ctx := context.Background()

	_, err := f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:  rec.ID.String(),
		MovementType: model.MovementEntrada,
		ToLocationID: strptr(f.locA.ID.String()),
		QuantityKg:   kg("100.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:    rec.ID.String(),
		MovementType:   model.MovementSaida,
		FromLocationID: strptr(f.locA.ID.String()),
		QuantityKg:     kg("150.00"),
	})
	assert.True(t, model.IsValidation(err), "expected validation error, got %v", err)

	// Partial exit within the located quantity is fine
	_, err = f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:    rec.ID.String(),
		MovementType:   model.MovementSaida,
		FromLocationID: strptr(f.locA.ID.String()),
		QuantityKg:     kg("40.00"),
	})
	assert.NoError(t, err)
}

func TestMovementNeverTouchesLedger(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")
	ctx := context.Background()

	_, err := f.svc.RecordMovement(ctx, dto.RecordMovementRequest{
		ReceptionID:  rec.ID.String(),
		MovementType: model.MovementEntrada,
		ToLocationID: strptr(f.locA.ID.String()),
		QuantityKg:   kg("300.00"),
	})
	require.NoError(t, err)

	got, err := f.recs.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.ConsumedKg.IsZero(), "physical movement must not consume the commercial ledger")
}

func TestMovementUnknownLocationRejected(t *testing.T) {
	f := newStorageFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "300.00")

	_, err := f.svc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		ReceptionID:  rec.ID.String(),
		MovementType: model.MovementEntrada,
		ToLocationID: strptr(uuid.NewString()),
		QuantityKg:   kg("10.00"),
	})
	assert.True(t, model.IsValidation(err))
}
