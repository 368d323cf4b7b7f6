package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OKR holds an objective and its key results for a period
type OKR struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Objective  string     `json:"objective" gorm:"type:varchar(255);not null"`
	KeyResults string     `json:"key_results" gorm:"type:text"`
	Period     *string    `json:"period,omitempty" gorm:"type:varchar(20)"`
	Status     string     `json:"status" gorm:"type:varchar(20);default:'draft'"`
	OwnerID    uuid.UUID  `json:"owner_id" gorm:"type:uuid;index;not null"`
	ProjectID  *uuid.UUID `json:"project_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (o *OKR) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = "draft"
	}
	return nil
}
