package dto

import "github.com/shopspring/decimal"

type RecordMovementRequest struct {
	ReceptionID    string          `json:"reception_id" validate:"required,uuid"`
	MovementType   string          `json:"movement_type" validate:"required,oneof=entrada saida transferencia consolidacao"`
	FromLocationID *string         `json:"from_location_id" validate:"omitempty,uuid"`
	ToLocationID   *string         `json:"to_location_id" validate:"omitempty,uuid"`
	QuantityKg     decimal.Decimal `json:"quantity_kg" validate:"required"`
	MovementDate   *string         `json:"movement_date"` // YYYY-MM-DD, defaults to today
	Notes          *string         `json:"notes"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	ReceptionID   string          `json:"reception_id"`
	ReceptionCode string          `json:"reception_code,omitempty"`
	MovementType  string          `json:"movement_type"`
	FromLocation  *string         `json:"from_location,omitempty"`
	ToLocation    *string         `json:"to_location,omitempty"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	MovementDate  string          `json:"movement_date"`
	Notes         *string         `json:"notes,omitempty"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type PositionResponse struct {
	ReceptionID   string `json:"reception_id"`
	ReceptionCode string `json:"reception_code,omitempty"`
	ProducerName  string `json:"producer_name,omitempty"`
	LocationID    string `json:"location_id"`
	LocationCode  string `json:"location_code,omitempty"`
	EntryDate     string `json:"entry_date"`
}

type CreateLocationRequest struct {
	LocationCode  string `json:"location_code" validate:"required"`
	Area          string `json:"area" validate:"required"`
	CapacityUnits *int   `json:"capacity_units" validate:"omitempty,gt=0"`
}

type LocationResponse struct {
	ID            string `json:"id"`
	LocationCode  string `json:"location_code"`
	Area          string `json:"area"`
	CapacityUnits *int   `json:"capacity_units"`
	Occupied      bool   `json:"occupied"`
}
