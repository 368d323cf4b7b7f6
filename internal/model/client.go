package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionTier enumerates the billing plans a tenant can be on
type SubscriptionTier string

const (
	TierFree  SubscriptionTier = "free"
	TierBasic SubscriptionTier = "basic"
	TierPro   SubscriptionTier = "pro"
)

// Client represents a tenant: an organizational unit owning a set of
// users, projects and derived entities. Not an HTTP client.
type Client struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string           `json:"name" gorm:"type:varchar(255);not null"`
	OwnerID          uuid.UUID        `json:"owner_id" gorm:"type:uuid;index;not null"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier" gorm:"type:varchar(20);not null;default:'free'"`
	MaxEmployees     int              `json:"max_employees" gorm:"default:5"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (cl *Client) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	if cl.SubscriptionTier == "" {
		cl.SubscriptionTier = TierFree
	}
	if cl.MaxEmployees == 0 {
		cl.MaxEmployees = 5
	}
	return nil
}
