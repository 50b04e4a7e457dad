package models

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// CompanyProfile holds the identity printed on a user's quotes.
// Every field is optional; the PDF header falls back to the user's name.
type CompanyProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	LegalName    string `gorm:"size:255" json:"legal_name,omitempty"`
	TaxID        string `gorm:"size:13" json:"tax_id,omitempty"`
	TaxAddress   string `gorm:"type:text" json:"tax_address,omitempty"`
	ContactEmail string `gorm:"size:254" json:"contact_email,omitempty"`
	ContactPhone string `gorm:"size:20" json:"contact_phone,omitempty"`

	// Logo is the storage key of the uploaded logo, empty when none.
	Logo string `gorm:"size:255" json:"logo,omitempty"`
}

// GetUserID implements the Ownable interface.
func (c *CompanyProfile) GetUserID() uint {
	return c.UserID
}

// HasIdentity reports whether any identity text was filled in.
func (c *CompanyProfile) HasIdentity() bool {
	return strings.TrimSpace(c.LegalName+c.TaxID+c.TaxAddress+c.ContactEmail+c.ContactPhone) != ""
}

// LogoKey builds the storage key for a user's logo, keeping the uploaded
// extension and defaulting to .png.
func LogoKey(userID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	return "user-assets/" + strconv.FormatUint(uint64(userID), 10) + "/logo" + ext
}
