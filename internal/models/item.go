package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is an inventory product. SKU is unique per owner, case-insensitive,
// among live rows (see the idx_items_owner_sku index).
type Item struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	SKU   string          `gorm:"column:sku;size:64;not null" json:"sku"`
	Name  string          `gorm:"size:150;not null" json:"name"`
	Stock int             `gorm:"not null;default:0" json:"stock"`
	Cost  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`
}

// GetUserID implements the Ownable interface for authorization.
func (i *Item) GetUserID() uint {
	return i.UserID
}

// InventoryValue is stock times unit cost.
func (i *Item) InventoryValue() decimal.Decimal {
	return i.Cost.Mul(decimal.NewFromInt(int64(i.Stock)))
}

// Label is the "SKU - name" form used in selects and documents.
func (i *Item) Label() string {
	return i.SKU + " - " + i.Name
}
