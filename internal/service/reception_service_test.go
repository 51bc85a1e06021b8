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

func newReceptionFixture() (*stubReceptionRepo, service.ReceptionService, *model.Producer) {
	recs := newStubReceptionRepo()
	producers := newStubProducerRepo()
	producers.mu.Lock()
	producer := producers.add(&model.Producer{
		Name:              "Finca Uno",
		CertificateExpiry: time.Now().AddDate(1, 0, 0),
		Active:            true,
	})
	producers.mu.Unlock()
	return recs, service.NewReceptionService(recs, producers), producer
}

func TestCreateReceptionStartsPending(t *testing.T) {
	recs, svc, producer := newReceptionFixture()
	_ = recs

	resp, err := svc.Create(context.Background(), dto.CreateReceptionRequest{
		ProducerID:    producer.ID.String(),
		ProductType:   "aguacate",
		QuantityKg:    kg("500.00"),
		ReceptionDate: "2026-08-30",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ReceptionPending, resp.Status)
	assert.Regexp(t, `^REC-20260830-\d{4}$`, resp.ReceptionCode)
	assert.True(t, resp.AvailableKg.Equal(kg("500.00")))
	assert.True(t, resp.ConsumedKg.IsZero())
}

func TestCreateReceptionUnknownProducer(t *testing.T) {
	_, svc, _ := newReceptionFixture()
	_, err := svc.Create(context.Background(), dto.CreateReceptionRequest{
		ProducerID:    uuid.NewString(),
		ProductType:   "aguacate",
		QuantityKg:    kg("500.00"),
		ReceptionDate: "2026-08-30",
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateReceptionHarvestAfterReception(t *testing.T) {
	_, svc, producer := newReceptionFixture()
	harvest := "2026-09-15"
	_, err := svc.Create(context.Background(), dto.CreateReceptionRequest{
		ProducerID:    producer.ID.String(),
		ProductType:   "aguacate",
		QuantityKg:    kg("500.00"),
		ReceptionDate: "2026-08-30",
		HarvestDate:   &harvest,
	})
	assert.True(t, model.IsValidation(err))
}

func TestReceptionStatusTransitionsAreTerminal(t *testing.T) {
	recs, svc, producer := newReceptionFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, dto.CreateReceptionRequest{
		ProducerID:    producer.ID.String(),
		ProductType:   "aguacate",
		QuantityKg:    kg("500.00"),
		ReceptionDate: "2026-08-30",
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	require.NoError(t, svc.Approve(ctx, id))

	got, err := recs.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReceptionApproved, got.Status)
	assert.NotNil(t, got.ApprovedAt)

	// Approved is terminal: neither a repeat approve nor a reject goes through
	assert.ErrorIs(t, svc.Approve(ctx, id), model.ErrConflict)
	assert.ErrorIs(t, svc.Reject(ctx, id), model.ErrConflict)
}

func TestRejectReception(t *testing.T) {
	recs, svc, producer := newReceptionFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, dto.CreateReceptionRequest{
		ProducerID:    producer.ID.String(),
		ProductType:   "mango",
		QuantityKg:    kg("120.00"),
		ReceptionDate: "2026-08-30",
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	require.NoError(t, svc.Reject(ctx, id))

	got, err := recs.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReceptionRejected, got.Status)
	assert.Nil(t, got.ApprovedAt)

	assert.ErrorIs(t, svc.Approve(ctx, id), model.ErrConflict)
}
