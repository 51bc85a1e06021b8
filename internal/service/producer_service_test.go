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

func TestRenewCertificateOnlyMovesForward(t *testing.T) {
	producers := newStubProducerRepo()
	svc := service.NewProducerService(producers)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateProducerRequest{
		Name:              "Finca Uno",
		CertificateExpiry: "2026-12-31",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = svc.RenewCertificate(ctx, id, "2026-06-30")
	assert.True(t, model.IsValidation(err))

	renewed, err := svc.RenewCertificate(ctx, id, "2027-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2027-12-31", renewed.CertificateExpiry)
}

func TestCertificateValidReflectsExpiry(t *testing.T) {
	producers := newStubProducerRepo()
	svc := service.NewProducerService(producers)
	ctx := context.Background()

	expired, err := svc.Create(ctx, dto.CreateProducerRequest{
		Name:              "Finca Vencida",
		CertificateExpiry: "2020-01-01",
	})
	require.NoError(t, err)
	assert.False(t, expired.CertificateValid)

	valid, err := svc.Create(ctx, dto.CreateProducerRequest{
		Name:              "Finca Vigente",
		CertificateExpiry: time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	require.NoError(t, err)
	assert.True(t, valid.CertificateValid)
}

func TestCheckProducerStrictExpiry(t *testing.T) {
	certification := service.NewCertificationService(nil, nil)
	producer := &model.Producer{
		ID:                uuid.New(),
		Name:              "Finca Uno",
		CertificateExpiry: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	err := certification.CheckProducer(producer, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)

	err = certification.CheckProducer(producer, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, model.ErrCertificationExpired)

	err = certification.CheckProducer(producer, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, model.ErrCertificationExpired)
}
