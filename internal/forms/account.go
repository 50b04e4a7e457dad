package forms

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/validation"
)

// CompanyProfileInput is the company identity form. The logo upload is
// handled separately since it is a file.
type CompanyProfileInput struct {
	LegalName    string
	TaxID        string
	TaxAddress   string
	ContactEmail string
	ContactPhone string
}

func CompanyProfileFromForm(f url.Values) CompanyProfileInput {
	return CompanyProfileInput{
		LegalName:    strings.TrimSpace(f.Get("legal_name")),
		TaxID:        strings.ToUpper(strings.TrimSpace(f.Get("tax_id"))),
		TaxAddress:   strings.TrimSpace(f.Get("tax_address")),
		ContactEmail: strings.TrimSpace(f.Get("contact_email")),
		ContactPhone: strings.TrimSpace(f.Get("contact_phone")),
	}
}

func CompanyProfileFrom(p models.CompanyProfile) CompanyProfileInput {
	return CompanyProfileInput{
		LegalName:    p.LegalName,
		TaxID:        p.TaxID,
		TaxAddress:   p.TaxAddress,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
	}
}

func (in CompanyProfileInput) Validate() (models.CompanyProfile, validation.Violations) {
	v := make(validation.Violations)
	validation.MaxLen("legal_name", in.LegalName, 255, v)
	validation.MaxLen("tax_id", in.TaxID, 13, v)
	validation.MaxLen("contact_email", in.ContactEmail, 254, v)
	validation.Email("contact_email", in.ContactEmail, v)
	validation.MaxLen("contact_phone", in.ContactPhone, 20, v)
	validation.Pattern("contact_phone", in.ContactPhone, phonePattern, v)
	if !v.Empty() {
		return models.CompanyProfile{}, v
	}
	return models.CompanyProfile{
		LegalName:    in.LegalName,
		TaxID:        in.TaxID,
		TaxAddress:   in.TaxAddress,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	}, nil
}

// AccountInput is the account details form.
type AccountInput struct {
	Name  string
	Email string
}

func AccountFromForm(f url.Values) AccountInput {
	return AccountInput{Name: strings.TrimSpace(f.Get("name")), Email: strings.ToLower(strings.TrimSpace(f.Get("email")))}
}

func (in AccountInput) Validate() (models.User, validation.Violations) {
	v := make(validation.Violations)
	validation.MaxLen("name", in.Name, 255, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	if !v.Empty() {
		return models.User{}, v
	}
	return models.User{Name: in.Name, Email: in.Email}, nil
}

// SignupInput is the registration form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func SignupFromForm(f url.Values) SignupInput {
	return SignupInput{
		Name:     strings.TrimSpace(f.Get("name")),
		Email:    strings.ToLower(strings.TrimSpace(f.Get("email"))),
		Password: f.Get("password"),
		Confirm:  f.Get("password_confirm"),
	}
}

func (in SignupInput) Validate() validation.Violations {
	_, v := AccountInput{Name: in.Name, Email: in.Email}.Validate()
	if v == nil {
		v = make(validation.Violations)
	}
	checkNewPassword("password", "password_confirm", in.Password, in.Confirm, v)
	if v.Empty() {
		return nil
	}
	return v
}

// PasswordChangeInput is the change-password form. Checking the current
// password needs the stored hash and is left to the caller.
type PasswordChangeInput struct {
	Current string
	New     string
	Confirm string
}

func PasswordChangeFromForm(f url.Values) PasswordChangeInput {
	return PasswordChangeInput{
		Current: f.Get("current_password"),
		New:     f.Get("new_password"),
		Confirm: f.Get("new_password_confirm"),
	}
}

func (in PasswordChangeInput) Validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("current_password", in.Current, v)
	checkNewPassword("new_password", "new_password_confirm", in.New, in.Confirm, v)
	if v.Empty() {
		return nil
	}
	return v
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

func checkNewPassword(field, confirmField, pw, confirm string, v validation.Violations) {
	if pw == "" {
		v.Add(field, "required")
		return
	}
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		v.Add(field, "password_too_short")
	}
	if pw != confirm {
		v.Add(confirmField, "password_mismatch")
	}
}
