package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateReceptionRequest struct {
	ProducerID    string          `json:"producer_id" validate:"required,uuid"`
	ProductType   string          `json:"product_type" validate:"required"`
	QuantityKg    decimal.Decimal `json:"quantity_kg" validate:"required,gt=0"`
	ReceptionDate string          `json:"reception_date" validate:"required"` // YYYY-MM-DD
	HarvestDate   *string         `json:"harvest_date"`
	LotNumber     *string         `json:"lot_number"`
	Notes         *string         `json:"notes"`
}

type ReceptionResponse struct {
	ID            string          `json:"id"`
	ReceptionCode string          `json:"reception_code"`
	ProducerID    string          `json:"producer_id"`
	ProducerName  string          `json:"producer_name,omitempty"`
	ProductType   string          `json:"product_type"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	ConsumedKg    decimal.Decimal `json:"consumed_kg"`
	AvailableKg   decimal.Decimal `json:"available_kg"`
	ReceptionDate string          `json:"reception_date"`
	HarvestDate   *string         `json:"harvest_date"`
	Status        string          `json:"status"`
}

type ReceptionListResponse struct {
	Data  []ReceptionResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// ReservationResponse is one ledger entry against a reception. Released
// entries keep their released_at timestamp so the history stays auditable.
type ReservationResponse struct {
	ID            string          `json:"id"`
	OperationType string          `json:"operation_type"`
	OperationID   string          `json:"operation_id"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	ReleasedAt    *time.Time      `json:"released_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ReservationListResponse struct {
	ReceptionID  string                `json:"reception_id"`
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

// AvailabilityResponse is the cached read served to allocation UIs.
type AvailabilityResponse struct {
	ReceptionID   string          `json:"reception_id"`
	ReceptionCode string          `json:"reception_code"`
	Status        string          `json:"status"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	ConsumedKg    decimal.Decimal `json:"consumed_kg"`
	AvailableKg   decimal.Decimal `json:"available_kg"`
}
