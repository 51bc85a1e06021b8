package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement types. Names follow the warehouse floor vocabulary.
const (
	MovementEntrada       = "entrada"
	MovementSaida         = "saida"
	MovementTransferencia = "transferencia"
	MovementConsolidacao  = "consolidacao"
)

// Movement is an immutable physical-location event. The log is append-only;
// LotPosition is its materialized projection. Physical placement is tracked
// independently of the commercial ledger and never affects it.
type Movement struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReceptionID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	MovementType   string     `gorm:"not null"`
	FromLocationID *uuid.UUID `gorm:"type:uuid;index"`
	ToLocationID   *uuid.UUID `gorm:"type:uuid;index"`
	QuantityKg     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MovementDate   time.Time       `gorm:"not null"`
	Notes          *string
	CreatedAt      time.Time

	Reception    *Reception       `gorm:"foreignKey:ReceptionID"`
	FromLocation *StorageLocation `gorm:"foreignKey:FromLocationID"`
	ToLocation   *StorageLocation `gorm:"foreignKey:ToLocationID"`
}

func (Movement) TableName() string { return "lot_movements" }

// IsOutbound reports whether the movement removes quantity from FromLocationID.
func (m *Movement) IsOutbound() bool {
	switch m.MovementType {
	case MovementSaida, MovementTransferencia, MovementConsolidacao:
		return true
	}
	return false
}
