package model

import (
	"time"

	"github.com/google/uuid"
)

// StorageLocation is a physical slot in the warehouse.
type StorageLocation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LocationCode  string    `gorm:"uniqueIndex;not null"`
	Area          string    `gorm:"not null"`
	CapacityUnits *int
	Occupied      bool `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (StorageLocation) TableName() string { return "storage_locations" }
