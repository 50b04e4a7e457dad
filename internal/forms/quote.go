package forms

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/validation"
	"github.com/shopspring/decimal"
)

// QuoteLineInput is one row of the line-item formset.
type QuoteLineInput struct {
	ItemID    string
	Quantity  string
	UnitPrice string
}

func (l QuoteLineInput) blank() bool {
	return strings.TrimSpace(l.ItemID+l.Quantity+l.UnitPrice) == ""
}

// QuoteInput is the quote header plus its line formset.
type QuoteInput struct {
	ClientID string
	Status   string
	Lines    []QuoteLineInput
}

// QuoteDraft is a validated quote ready for the quote service.
type QuoteDraft struct {
	ClientID uint
	Status   models.QuoteStatus
	Lines    []LineDraft
}

// LineDraft is a validated line. Row is the formset index it was posted
// under, used to attach later errors to the right field.
type LineDraft struct {
	Row       int
	ItemID    uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// MaxQuantity is the largest quantity a single line accepts.
const MaxQuantity = 1_000_000

// LineField names the form field of line i, e.g. lines-0-quantity.
func LineField(i int, name string) string {
	return "lines-" + strconv.Itoa(i) + "-" + name
}

// QuoteFromForm reads the quote form. Lines are posted as
// lines-<n>-item_id / lines-<n>-quantity / lines-<n>-unit_price, with
// lines-total giving the number of rows.
func QuoteFromForm(f url.Values) QuoteInput {
	in := QuoteInput{
		ClientID: strings.TrimSpace(f.Get("client_id")),
		Status:   strings.TrimSpace(f.Get("status")),
	}
	total, _ := strconv.Atoi(f.Get("lines-total"))
	if total > 200 {
		total = 200
	}
	for i := 0; i < total; i++ {
		in.Lines = append(in.Lines, QuoteLineInput{
			ItemID:    strings.TrimSpace(f.Get(LineField(i, "item_id"))),
			Quantity:  strings.TrimSpace(f.Get(LineField(i, "quantity"))),
			UnitPrice: strings.TrimSpace(f.Get(LineField(i, "unit_price"))),
		})
	}
	return in
}

// QuoteFrom pre-fills the form from a stored quote with preloaded lines.
func QuoteFrom(q models.Quote) QuoteInput {
	in := QuoteInput{ClientID: strconv.FormatUint(uint64(q.ClientID), 10), Status: string(q.Status)}
	for _, l := range q.Lines {
		in.Lines = append(in.Lines, QuoteLineInput{
			ItemID:    strconv.FormatUint(uint64(l.ItemID), 10),
			Quantity:  strconv.Itoa(l.Quantity),
			UnitPrice: l.UnitPrice.StringFixed(2),
		})
	}
	return in
}

// Validate checks the header and every non-blank line. Fully blank rows are
// the formset's spare rows and are skipped; at least one real line is required.
func (in QuoteInput) Validate() (QuoteDraft, validation.Violations) {
	v := make(validation.Violations)
	clientID := validation.ID("client_id", in.ClientID, v)
	status := models.QuoteStatus(in.Status)
	if in.Status == "" {
		status = models.QuoteStatusDraft
	} else if !status.Valid() {
		v.Add("status", "invalid_choice")
	}

	var lines []LineDraft
	for i, l := range in.Lines {
		if l.blank() {
			continue
		}
		itemID := validation.ID(LineField(i, "item_id"), l.ItemID, v)
		qty := 0
		if l.Quantity == "" {
			v.Add(LineField(i, "quantity"), "required")
		} else {
			qty = validation.Int(LineField(i, "quantity"), l.Quantity, 1, 0, v)
			if qty > MaxQuantity {
				v.Add(LineField(i, "quantity"), "too_large")
			}
		}
		var price decimal.Decimal
		if l.UnitPrice == "" {
			v.Add(LineField(i, "unit_price"), "required")
		} else {
			price = amount(LineField(i, "unit_price"), l.UnitPrice, v)
		}
		lines = append(lines, LineDraft{Row: i, ItemID: itemID, Quantity: qty, UnitPrice: price})
	}
	if len(lines) == 0 {
		v.Add("lines", "at_least_one_line")
	}
	if v.Empty() {
		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if total.GreaterThan(MaxTotal) {
			v.Add("lines", "total_too_large")
		}
	}
	if !v.Empty() {
		return QuoteDraft{}, v
	}
	return QuoteDraft{ClientID: clientID, Status: status, Lines: lines}, nil
}

// ItemIDs returns the distinct item ids referenced by the draft.
func (d QuoteDraft) ItemIDs() []uint {
	seen := make(map[uint]bool, len(d.Lines))
	var ids []uint
	for _, l := range d.Lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			ids = append(ids, l.ItemID)
		}
	}
	return ids
}
