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

type expeditionFixture struct {
	recs      *stubReceptionRepo
	exps      *stubExpeditionRepo
	positions *stubPositionRepo
	ledger    service.LedgerService
	svc       service.ExpeditionService
	producer  *model.Producer
}

func newExpeditionFixture() *expeditionFixture {
	recs := newStubReceptionRepo()
	reservations := newStubReservationRepo()
	exps := newStubExpeditionRepo(recs)
	positions := newStubPositionRepo()
	ledger := service.NewLedgerService(recs, reservations)
	certification := service.NewCertificationService(nil, nil)
	svc := service.NewExpeditionService(exps, recs, positions, ledger, certification)

	return &expeditionFixture{
		recs:      recs,
		exps:      exps,
		positions: positions,
		ledger:    ledger,
		svc:       svc,
		producer: &model.Producer{
			ID:                uuid.New(),
			Name:              "Finca Uno",
			CertificateExpiry: time.Now().AddDate(1, 0, 0),
			Active:            true,
		},
	}
}

func (f *expeditionFixture) place(rec *model.Reception) {
	_ = f.positions.UpsertTx(nil, &model.LotPosition{
		ReceptionID:       rec.ID,
		CurrentLocationID: uuid.New(),
		EntryDate:         time.Now(),
	})
}

func expeditionRequest(items ...dto.AllocationItemRequest) dto.CreateExpeditionRequest {
	return dto.CreateExpeditionRequest{
		Destination:    "Rotterdam",
		ExpeditionDate: time.Now().Format("2006-01-02"),
		Items:          items,
	}
}

func TestCreateExpeditionNoItemsRejected(t *testing.T) {
	f := newExpeditionFixture()

	_, err := f.svc.Create(context.Background(), expeditionRequest())
	assert.True(t, model.IsValidation(err), "expected validation error, got %v", err)
	assert.Empty(t, f.exps.all(), "no expedition may be written for an empty request")
}

func TestCreateExpeditionReservesAndNumbers(t *testing.T) {
	f := newExpeditionFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "400.00")
	f.place(rec)

	resp, err := f.svc.Create(context.Background(), expeditionRequest(item(rec, "250.00")))
	require.NoError(t, err)

	assert.Regexp(t, `^EXP-\d{3}$`, resp.ExpeditionCode)
	assert.Equal(t, model.LotActive, resp.Status)
	assert.True(t, resp.TotalWeightKg.Equal(kg("250.00")))

	avail, _ := f.ledger.AvailableQuantity(context.Background(), rec.ID)
	assert.True(t, avail.AvailableKg.Equal(kg("150.00")))
}

func TestCreateExpeditionRequiresPosition(t *testing.T) {
	f := newExpeditionFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "400.00")
	// no position recorded

	_, err := f.svc.Create(context.Background(), expeditionRequest(item(rec, "100.00")))
	assert.True(t, model.IsValidation(err), "expected validation error, got %v", err)

	avail, _ := f.ledger.AvailableQuantity(context.Background(), rec.ID)
	assert.True(t, avail.AvailableKg.Equal(kg("400.00")))
}

// The certification gate compares certificate_expiry strictly against the
// expedition date: a certificate expiring 2024-01-01 covers a 2023-12-01
// shipment, fails a 2024-06-01 shipment, and fails on the expiry date itself.
func TestExpeditionCertificationGateDates(t *testing.T) {
	cases := []struct {
		name           string
		expeditionDate string
		wantErr        bool
	}{
		{"before expiry", "2023-12-01", false},
		{"after expiry", "2024-06-01", true},
		{"on expiry date", "2024-01-01", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newExpeditionFixture()
			f.producer.CertificateExpiry = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			rec := approvedReception(f.recs, f.producer, "aguacate", "100.00")
			f.place(rec)

			req := expeditionRequest(item(rec, "50.00"))
			req.ExpeditionDate = tc.expeditionDate
			req.DeclaresGGN = true

			_, err := f.svc.Create(context.Background(), req)
			if tc.wantErr {
				assert.ErrorIs(t, err, model.ErrCertificationExpired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpeditionWithoutGGNSkipsGate(t *testing.T) {
	f := newExpeditionFixture()
	f.producer.CertificateExpiry = time.Now().AddDate(0, 0, -30)
	rec := approvedReception(f.recs, f.producer, "aguacate", "100.00")
	f.place(rec)

	resp, err := f.svc.Create(context.Background(), expeditionRequest(item(rec, "50.00")))
	require.NoError(t, err)
	assert.False(t, resp.DeclaresGGN)
}

func TestDeleteExpeditionRestoresBalance(t *testing.T) {
	f := newExpeditionFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "400.00")
	f.place(rec)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, expeditionRequest(item(rec, "250.00")))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.Delete(ctx, id))
	err = f.svc.Delete(ctx, id)
	assert.ErrorIs(t, err, model.ErrConflict)

	avail, _ := f.ledger.AvailableQuantity(ctx, rec.ID)
	assert.True(t, avail.AvailableKg.Equal(kg("400.00")))
}

func TestExpeditionInsufficientBalance(t *testing.T) {
	f := newExpeditionFixture()
	rec := approvedReception(f.recs, f.producer, "aguacate", "100.00")
	f.place(rec)

	_, err := f.svc.Create(context.Background(), expeditionRequest(item(rec, "100.50")))
	assert.ErrorIs(t, err, model.ErrInsufficientQuantity)
}
