package models

import (
	"time"

	"gorm.io/gorm"
)

// Report is a named note a user keeps alongside their quotes.
type Report struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the creator of the report
	UserID uint `gorm:"index;not null" json:"user_id"`

	Name        string `gorm:"size:140;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (r *Report) GetUserID() uint {
	return r.UserID
}
