package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is a customer quotes are addressed to.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Name  string `gorm:"size:120;not null" json:"name"`
	Email string `gorm:"size:254" json:"email,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *Client) GetUserID() uint {
	return c.UserID
}
