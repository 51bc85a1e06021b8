package dto

import "github.com/shopspring/decimal"

// TraceEvent is one hop in a reception's forward chain, ordered by date.
type TraceEvent struct {
	Kind       string          `json:"kind"` // consolidation | expedition
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Status     string          `json:"status"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	Date       string          `json:"date"`
	Detail     string          `json:"detail,omitempty"`
}

type TraceForwardResponse struct {
	ReceptionID     string       `json:"reception_id"`
	ReceptionCode   string       `json:"reception_code"`
	ProducerName    string       `json:"producer_name"`
	IncludeInactive bool         `json:"include_inactive"`
	Events          []TraceEvent `json:"events"`
}

// TraceOrigin is one source reception behind a consolidated lot or expedition.
type TraceOrigin struct {
	ReceptionID       string          `json:"reception_id"`
	ReceptionCode     string          `json:"reception_code"`
	ProducerID        string          `json:"producer_id"`
	ProducerName      string          `json:"producer_name"`
	GGN               *string         `json:"ggn,omitempty"`
	ProductType       string          `json:"product_type"`
	QuantityKg        decimal.Decimal `json:"quantity_kg"`
	HarvestDate       *string         `json:"harvest_date,omitempty"`
	CertificateExpiry string          `json:"certificate_expiry"`
}

type TraceBackwardResponse struct {
	Kind    string        `json:"kind"` // consolidation | expedition
	ID      string        `json:"id"`
	Code    string        `json:"code"`
	Status  string        `json:"status"`
	Origins []TraceOrigin `json:"origins"`
}

// LabelPayload is the machine-readable content for a lot label: the backward
// trace condensed to what a printed code must carry.
type LabelPayload struct {
	Code        string   `json:"code"`
	Kind        string   `json:"kind"`
	ProductType string   `json:"product_type,omitempty"`
	TotalKg     string   `json:"total_kg"`
	Date        string   `json:"date"`
	GGNs        []string `json:"ggns,omitempty"`
	Origins     []string `json:"origins"` // reception codes
}
