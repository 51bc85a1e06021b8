package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LotActive   = "active"
	LotInactive = "inactive"
)

// ProductTypeMixed marks consolidations that merge more than one product type.
// Callers must request it explicitly; it is never inferred.
const ProductTypeMixed = "mista"

// ConsolidatedLot is a merged shippable unit drawing partial quantities from
// one or more approved receptions. Reversal flips Status to inactive; rows are
// never hard-deleted so the audit trail survives.
type ConsolidatedLot struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConsolidationCode string    `gorm:"uniqueIndex;not null"`
	ClientName        *string
	ClientLotNumber   *string
	InternalLotNumber *string
	ProductType       string          `gorm:"not null"`
	TotalQuantityKg   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status            string          `gorm:"not null;default:'active';index"`
	Certified         bool            `gorm:"not null;default:false"`
	Notes             *string
	ConsolidationDate time.Time `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items []ConsolidatedLotItem `gorm:"foreignKey:ConsolidatedLotID"`
}

func (ConsolidatedLot) TableName() string { return "consolidated_lots" }

// ConsolidatedLotItem is one allocation line against a reception.
type ConsolidatedLotItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConsolidatedLotID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceptionID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityUsedKg    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt         time.Time

	Lot       *ConsolidatedLot `gorm:"foreignKey:ConsolidatedLotID"`
	Reception *Reception       `gorm:"foreignKey:ReceptionID"`
}

func (ConsolidatedLotItem) TableName() string { return "consolidated_lot_items" }
