package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation types owning a reservation.
const (
	OpConsolidation = "consolidation"
	OpExpedition    = "expedition"
)

// LotReservation is one append-only ledger entry: the quantity a specific
// operation reserved against a specific reception. Reversal never guesses an
// aggregate — it releases exactly the rows the operation created.
type LotReservation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperationType string          `gorm:"not null;index:idx_reservation_operation,priority:1"`
	OperationID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_reservation_operation,priority:2"`
	ReceptionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityKg    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReleasedAt    *time.Time
	CreatedAt     time.Time
}

func (LotReservation) TableName() string { return "lot_reservations" }

// Active reports whether the reservation still counts against the ledger.
func (r *LotReservation) Active() bool { return r.ReleasedAt == nil }

// OperationRef identifies the allocation operation a reservation belongs to.
type OperationRef struct {
	Type string
	ID   uuid.UUID
}
