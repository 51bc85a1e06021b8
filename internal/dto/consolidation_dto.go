package dto

import "github.com/shopspring/decimal"

// AllocationItemRequest is one allocation line in a consolidation or
// expedition request.
type AllocationItemRequest struct {
	ReceptionID string          `json:"reception_id" validate:"required,uuid"`
	QuantityKg  decimal.Decimal `json:"quantity_kg" validate:"required"`
}

type CreateConsolidationRequest struct {
	ClientName      *string                 `json:"client_name"`
	ClientLotNumber *string                 `json:"client_lot_number"`
	Items           []AllocationItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes           *string                 `json:"notes"`

	// RequireCertification makes the certification gate a hard precondition
	// for every item's producer.
	RequireCertification bool `json:"require_certification"`

	// AllowMixed permits items of different product types; the resulting lot
	// is stored as a mixed consolidation.
	AllowMixed bool `json:"allow_mixed"`
}

type ConsolidationItemResponse struct {
	ReceptionID    string          `json:"reception_id"`
	ReceptionCode  string          `json:"reception_code,omitempty"`
	ProducerName   string          `json:"producer_name,omitempty"`
	QuantityUsedKg decimal.Decimal `json:"quantity_used_kg"`
}

type ConsolidationResponse struct {
	ID                string                      `json:"id"`
	ConsolidationCode string                      `json:"consolidation_code"`
	ClientName        *string                     `json:"client_name"`
	ProductType       string                      `json:"product_type"`
	TotalQuantityKg   decimal.Decimal             `json:"total_quantity_kg"`
	Status            string                      `json:"status"`
	Certified         bool                        `json:"certified"`
	ConsolidationDate string                      `json:"consolidation_date"`
	Items             []ConsolidationItemResponse `json:"items"`
}

type ConsolidationListResponse struct {
	Data  []ConsolidationResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
