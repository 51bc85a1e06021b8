package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producer represents a certified supplier. Identity fields are immutable;
// CertificateExpiry changes only through the administrative renewal flow.
type Producer struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                 string    `gorm:"not null"`
	FarmName             *string
	CertificateNumber    *string
	CertificateExpiry    time.Time `gorm:"not null"`
	GGN                  *string   `gorm:"column:ggn;index"`
	Email                *string
	Phone                *string
	Address              *string
	FruitVarieties       *string
	ProductionVolumeTons *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Active               bool             `gorm:"not null;default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (Producer) TableName() string { return "producers" }
