package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reception statuses. A reception is created pending and transitions exactly
// once to approved or rejected; both are terminal.
const (
	ReceptionPending  = "pending"
	ReceptionApproved = "approved"
	ReceptionRejected = "rejected"
)

// Reception is one physical intake event of a producer lot. QuantityKg is
// fixed at approval and becomes the starting balance of the lot ledger;
// ConsumedKg is the running total reserved by consolidations and expeditions
// and is only ever changed through the conditional ledger updates.
type Reception struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReceptionCode string    `gorm:"uniqueIndex;not null"`
	ProducerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductType   string    `gorm:"not null"`
	QuantityKg    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ConsumedKg    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReceptionDate time.Time       `gorm:"not null"`
	HarvestDate   *time.Time
	LotNumber     *string
	Notes         *string
	Status        string `gorm:"not null;default:'pending';index"`
	ApprovedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Producer *Producer `gorm:"foreignKey:ProducerID"`
}

func (Reception) TableName() string { return "receptions" }

// AvailableKg is the uncommitted balance of the lot.
func (r *Reception) AvailableKg() decimal.Decimal {
	return r.QuantityKg.Sub(r.ConsumedKg)
}
