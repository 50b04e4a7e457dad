package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOwnables_GetUserID(t *testing.T) {
	tests := []struct {
		name string
		got  uint
	}{
		{"client", (&Client{UserID: 7}).GetUserID()},
		{"item", (&Item{UserID: 7}).GetUserID()},
		{"quote", (&Quote{UserID: 7}).GetUserID()},
		{"report", (&Report{UserID: 7}).GetUserID()},
		{"company", (&CompanyProfile{UserID: 7}).GetUserID()},
	}
	for _, tt := range tests {
		if tt.got != 7 {
			t.Errorf("%s GetUserID() = %d, want 7", tt.name, tt.got)
		}
	}
}

func TestQuoteItem_Subtotal(t *testing.T) {
	tests := []struct {
		name  string
		qty   int
		price string
		want  string
	}{
		{"simple", 2, "10.50", "21"},
		{"one cent", 3, "0.01", "0.03"},
		{"free", 5, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qi := QuoteItem{Quantity: tt.qty, UnitPrice: decimal.RequireFromString(tt.price)}
			if got := qi.Subtotal(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Subtotal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestItem_InventoryValue(t *testing.T) {
	it := Item{Stock: 4, Cost: decimal.RequireFromString("2.25")}
	if got := it.InventoryValue(); got.StringFixed(2) != "9.00" {
		t.Errorf("InventoryValue() = %s, want 9.00", got)
	}
	if got := it.Label(); got != " - " {
		t.Errorf("Label() = %q", got)
	}
}

func TestQuoteStatus(t *testing.T) {
	tests := []struct {
		status QuoteStatus
		valid  bool
		label  string
	}{
		{QuoteStatusDraft, true, "Borrador"},
		{QuoteStatusSent, true, "Enviada"},
		{QuoteStatusWon, true, "Ganada"},
		{QuoteStatusLost, true, "Perdida"},
		{"archived", false, "archived"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	if got := (&User{Name: "Ana", Email: "a@b.mx"}).DisplayName(); got != "Ana" {
		t.Errorf("DisplayName() = %q, want Ana", got)
	}
	if got := (&User{Email: "a@b.mx"}).DisplayName(); got != "a@b.mx" {
		t.Errorf("DisplayName() = %q, want email fallback", got)
	}
}

func TestLogoKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"brand.JPG", "user-assets/3/logo.jpg"},
		{"logo", "user-assets/3/logo.png"},
		{"a.b.webp", "user-assets/3/logo.webp"},
	}
	for _, tt := range tests {
		if got := LogoKey(3, tt.filename); got != tt.want {
			t.Errorf("LogoKey(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestCompanyProfile_HasIdentity(t *testing.T) {
	if (&CompanyProfile{}).HasIdentity() {
		t.Errorf("empty profile should have no identity")
	}
	if !(&CompanyProfile{TaxID: "XAXX010101000"}).HasIdentity() {
		t.Errorf("tax id alone should count as identity")
	}
}
