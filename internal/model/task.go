package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task belongs to a project and is assigned to a user
type Task struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title      string     `json:"title" gorm:"type:varchar(255);not null"`
	ProjectID  uuid.UUID  `json:"project_id" gorm:"type:uuid;index;not null"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	OwnerID    uuid.UUID  `json:"owner_id" gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
