// Package pdf renders quotes as A4 PDF documents with gofpdf.
package pdf

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteDocument is everything printed on a quote PDF. It is assembled by
// the quote service so the renderer never touches the database.
type QuoteDocument struct {
	Number    uint
	CreatedAt time.Time
	Status    string // already translated, e.g. "Borrador"
	IssuedBy  string
	Client    Party
	Company   *Company // nil when the issuer has no company profile
	Lines     []Line
	Total     decimal.Decimal
}

// Party identifies the quote recipient.
type Party struct {
	Name  string
	Email string
}

// Company is the issuer identity. Logo holds the raw uploaded bytes, nil
// when there is no logo or it could not be read.
type Company struct {
	LegalName    string
	TaxID        string
	TaxAddress   string
	ContactEmail string
	ContactPhone string
	Logo         []byte
}

// Line is one priced concept.
type Line struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// identity returns the non-empty identity rows in print order.
func (c *Company) identity() []string {
	var rows []string
	add := func(prefix, v string) {
		if v != "" {
			rows = append(rows, prefix+v)
		}
	}
	add("", c.LegalName)
	add("RFC: ", c.TaxID)
	add("", c.TaxAddress)
	add("", c.ContactEmail)
	add("Tel. ", c.ContactPhone)
	return rows
}
