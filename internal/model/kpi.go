package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KPI tracks a single measurable indicator against a target value
type KPI struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	TargetValue  float64    `json:"target_value" gorm:"not null"`
	CurrentValue *float64   `json:"current_value,omitempty"`
	Unit         string     `json:"unit" gorm:"type:varchar(20);default:'%'"`
	OwnerID      uuid.UUID  `json:"owner_id" gorm:"type:uuid;index;not null"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (k *KPI) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.Unit == "" {
		k.Unit = "%"
	}
	return nil
}
