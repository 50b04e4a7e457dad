package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft QuoteStatus = "draft"
	QuoteStatusSent  QuoteStatus = "sent"
	QuoteStatusWon   QuoteStatus = "won"
	QuoteStatusLost  QuoteStatus = "lost"
)

// QuoteStatuses lists the statuses in display order.
var QuoteStatuses = []QuoteStatus{QuoteStatusDraft, QuoteStatusSent, QuoteStatusWon, QuoteStatusLost}

var quoteStatusLabels = map[QuoteStatus]string{
	QuoteStatusDraft: "Borrador",
	QuoteStatusSent:  "Enviada",
	QuoteStatusWon:   "Ganada",
	QuoteStatusLost:  "Perdida",
}

// Valid reports whether s is a known status.
func (s QuoteStatus) Valid() bool {
	_, ok := quoteStatusLabels[s]
	return ok
}

// Label returns the human readable status, or the raw value if unknown.
func (s QuoteStatus) Label() string {
	if l, ok := quoteStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Quote is a priced offer to a client. Total is derived from the lines and
// only written by the quote service.
type Quote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the creator and owner of the quote
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client"`

	Status QuoteStatus     `gorm:"size:32;not null;default:'draft'" json:"status"`
	Total  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	Lines []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (q *Quote) GetUserID() uint {
	return q.UserID
}

// QuoteItem is one line of a quote. Lines are replaced wholesale on edit,
// so their IDs are not stable.
type QuoteItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	QuoteID uint `gorm:"index;not null" json:"quote_id"`

	ItemID uint `gorm:"index;not null" json:"item_id"`
	Item   Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// Subtotal is quantity times unit price.
func (qi *QuoteItem) Subtotal() decimal.Decimal {
	return qi.UnitPrice.Mul(decimal.NewFromInt(int64(qi.Quantity)))
}
