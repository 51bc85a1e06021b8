package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expedition is an outbound shipment drawing from one or more receptions.
// Items reference receptions directly — a consolidated lot is expedited by
// re-selecting its underlying receptions.
type Expedition struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExpeditionCode string    `gorm:"uniqueIndex;not null"`
	Destination    string    `gorm:"not null"`
	ExpeditionDate time.Time `gorm:"not null"`
	TotalWeightKg  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         string          `gorm:"not null;default:'active';index"`
	DeclaresGGN    bool            `gorm:"column:declares_ggn;not null;default:false"`
	Transporter    *string
	VehiclePlate   *string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items []ExpeditionItem `gorm:"foreignKey:ExpeditionID"`
}

func (Expedition) TableName() string { return "expeditions" }

// ExpeditionItem is one allocation line against a reception.
type ExpeditionItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExpeditionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceptionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityKg   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LotReference *string
	CreatedAt    time.Time

	Expedition *Expedition `gorm:"foreignKey:ExpeditionID"`
	Reception  *Reception  `gorm:"foreignKey:ReceptionID"`
}

func (ExpeditionItem) TableName() string { return "expedition_items" }
