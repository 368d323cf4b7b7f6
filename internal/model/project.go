package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project belongs to a tenant and groups tasks, OKRs and KPIs.
// OwnerID scopes the row to the user who created it.
type Project struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	ClientID  uuid.UUID `json:"client_id" gorm:"type:uuid;index;not null"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
