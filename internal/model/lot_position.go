package model

import (
	"time"

	"github.com/google/uuid"
)

// LotPosition is the current physical location of a reception: a materialized
// projection of the movement log, one row per reception, updated by upsert in
// the same transaction that appends the movement.
type LotPosition struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReceptionID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CurrentLocationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	LastMovementID    *uuid.UUID `gorm:"type:uuid"`
	EntryDate         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time

	Reception       *Reception       `gorm:"foreignKey:ReceptionID"`
	CurrentLocation *StorageLocation `gorm:"foreignKey:CurrentLocationID"`
}

func (LotPosition) TableName() string { return "current_lot_positions" }
