package dto

import "github.com/shopspring/decimal"

type CreateExpeditionRequest struct {
	Destination    string                  `json:"destination" validate:"required"`
	ExpeditionDate string                  `json:"expedition_date" validate:"required"` // YYYY-MM-DD
	Items          []AllocationItemRequest `json:"items" validate:"required,min=1,dive"`
	Transporter    *string                 `json:"transporter"`
	VehiclePlate   *string                 `json:"vehicle_plate"`
	Notes          *string                 `json:"notes"`

	// DeclaresGGN marks the shipment as GLOBALG.A.P.-compliant, which makes
	// the certification gate a hard precondition for every item's producer.
	DeclaresGGN bool `json:"declares_ggn"`
}

type ExpeditionItemResponse struct {
	ReceptionID   string          `json:"reception_id"`
	ReceptionCode string          `json:"reception_code,omitempty"`
	ProducerName  string          `json:"producer_name,omitempty"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
}

type ExpeditionResponse struct {
	ID             string                   `json:"id"`
	ExpeditionCode string                   `json:"expedition_code"`
	Destination    string                   `json:"destination"`
	ExpeditionDate string                   `json:"expedition_date"`
	TotalWeightKg  decimal.Decimal          `json:"total_weight_kg"`
	Status         string                   `json:"status"`
	DeclaresGGN    bool                     `json:"declares_ggn"`
	Transporter    *string                  `json:"transporter"`
	VehiclePlate   *string                  `json:"vehicle_plate"`
	Items          []ExpeditionItemResponse `json:"items"`
}

type ExpeditionListResponse struct {
	Data  []ExpeditionResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
