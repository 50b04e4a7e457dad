// Package forms holds one input struct per editable entity. Each Validate is
// pure: it reads the raw strings and returns either the entity to persist or
// the field violations, never both, and never touches the database.
package forms

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/money"
	"github.com/corequote/corequote/validation"
	"github.com/shopspring/decimal"
)

// ClientInput is the client form.
type ClientInput struct {
	Name  string
	Email string
}

// ClientFromForm reads a ClientInput from a parsed request form.
func ClientFromForm(f url.Values) ClientInput {
	return ClientInput{Name: strings.TrimSpace(f.Get("name")), Email: strings.TrimSpace(f.Get("email"))}
}

// ClientFrom pre-fills the form for editing.
func ClientFrom(c models.Client) ClientInput {
	return ClientInput{Name: c.Name, Email: c.Email}
}

func (in ClientInput) Validate() (models.Client, validation.Violations) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 120, v)
	validation.MaxLen("email", in.Email, 254, v)
	validation.Email("email", in.Email, v)
	if !v.Empty() {
		return models.Client{}, v
	}
	return models.Client{Name: in.Name, Email: in.Email}, nil
}

// ItemInput is the inventory item form.
type ItemInput struct {
	SKU   string
	Name  string
	Stock string
	Cost  string
}

func ItemFromForm(f url.Values) ItemInput {
	return ItemInput{
		SKU:   strings.TrimSpace(f.Get("sku")),
		Name:  strings.TrimSpace(f.Get("name")),
		Stock: strings.TrimSpace(f.Get("stock")),
		Cost:  strings.TrimSpace(f.Get("cost")),
	}
}

func ItemFrom(i models.Item) ItemInput {
	return ItemInput{SKU: i.SKU, Name: i.Name, Stock: strconv.Itoa(i.Stock), Cost: i.Cost.StringFixed(2)}
}

func (in ItemInput) Validate() (models.Item, validation.Violations) {
	v := make(validation.Violations)
	validation.Required("sku", in.SKU, v)
	validation.MaxLen("sku", in.SKU, 64, v)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 150, v)
	stock := validation.Int("stock", in.Stock, 0, 0, v)
	cost := decimal.Zero
	if in.Cost != "" {
		cost = amount("cost", in.Cost, v)
	}
	if !v.Empty() {
		return models.Item{}, v
	}
	return models.Item{SKU: in.SKU, Name: in.Name, Stock: stock, Cost: cost}, nil
}

// ReportInput is the report form.
type ReportInput struct {
	Name        string
	Description string
}

func ReportFromForm(f url.Values) ReportInput {
	return ReportInput{Name: strings.TrimSpace(f.Get("name")), Description: strings.TrimSpace(f.Get("description"))}
}

func ReportFrom(r models.Report) ReportInput {
	return ReportInput{Name: r.Name, Description: r.Description}
}

func (in ReportInput) Validate() (models.Report, validation.Violations) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 140, v)
	if !v.Empty() {
		return models.Report{}, v
	}
	return models.Report{Name: in.Name, Description: in.Description}, nil
}

// amount parses a non-negative money value with at most two decimals.
// Ceilings of the decimal(10,2) price/cost columns and the decimal(12,2)
// quote total.
var (
	MaxAmount = decimal.RequireFromString("99999999.99")
	MaxTotal  = decimal.RequireFromString("9999999999.99")
)

func amount(field, value string, v validation.Violations) decimal.Decimal {
	d, err := money.Parse(value)
	switch {
	case errors.Is(err, money.ErrTooManyDecimals):
		v.Add(field, "max_two_decimals")
	case err != nil:
		v.Add(field, "invalid_number")
	case d.IsNegative():
		v.Add(field, "must_be_non_negative")
	case d.GreaterThan(MaxAmount):
		v.Add(field, "too_large")
	}
	return d
}

var phonePattern = regexp.MustCompile(`^[0-9+\-()\s]+$`)
