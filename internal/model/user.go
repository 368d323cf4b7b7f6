package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole enumerates the roles a user can hold within a tenant
type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleTeamlead UserRole = "teamlead"
	RoleEmployee UserRole = "employee"
)

// User represents the user model stored in the database
type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Username       string     `json:"username" gorm:"type:varchar(100);index;not null"`
	Email          string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	HashedPassword string     `json:"-" gorm:"type:varchar(255);not null"`
	Role           UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'teamlead'"`
	Position       *string    `json:"position,omitempty" gorm:"type:varchar(100)"`
	ClientID       *uuid.UUID `json:"client_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt      time.Time  `json:"created_at"`
}

// BeforeCreate assigns the server-side identifier and role default
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleTeamlead
	}
	return nil
}
