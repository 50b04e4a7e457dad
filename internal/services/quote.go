package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/money"
	"github.com/corequote/corequote/internal/pdf"
	"github.com/corequote/corequote/internal/policy"
	"github.com/corequote/corequote/internal/storage"
	"github.com/corequote/corequote/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteService owns quote writes: line replacement and the stored total.
type QuoteService struct {
	db    *gorm.DB
	gate  *policy.Gate[uint]
	store storage.Storage
}

func NewQuoteService(db *gorm.DB, gate *policy.Gate[uint], store storage.Storage) *QuoteService {
	return &QuoteService{db: db, gate: gate, store: store}
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

// Create validates in and stores a new quote with its lines and total.
func (s *QuoteService) Create(ctx context.Context, ownerID uint, in forms.QuoteInput) (*models.Quote, error) {
	draft, err := s.prepare(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	q := &models.Quote{UserID: ownerID, ClientID: draft.ClientID, Status: draft.Status}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		return replaceLines(tx, q, draft.Lines)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces the quote header, its lines and its total in one
// transaction. On any failure the previous lines and total are kept.
func (s *QuoteService) Update(ctx context.Context, ownerID, quoteID uint, in forms.QuoteInput) (*models.Quote, error) {
	var q models.Quote
	if err := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID)).First(&q, quoteID).Error; err != nil {
		return nil, notFound(err)
	}
	draft, err := s.prepare(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	q.ClientID = draft.ClientID
	q.Status = draft.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&q).Select("client_id", "status").Updates(&q).Error; err != nil {
			return fmt.Errorf("update quote: %w", err)
		}
		if err := tx.Where("quote_id = ?", q.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			return fmt.Errorf("delete quote lines: %w", err)
		}
		return replaceLines(tx, &q, draft.Lines)
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// prepare runs form validation and then checks that the client and every
// item belong to ownerID. Nothing is written.
func (s *QuoteService) prepare(ctx context.Context, ownerID uint, in forms.QuoteInput) (forms.QuoteDraft, error) {
	draft, v := in.Validate()
	if v != nil {
		return draft, invalid(v)
	}
	v = make(validation.Violations)

	var client models.Client
	err := s.db.WithContext(ctx).First(&client, draft.ClientID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		v.Add("client_id", "not_found")
	case err != nil:
		return draft, fmt.Errorf("load client: %w", err)
	case !s.gate.Can(ctx, ownerID, policy.ActionView, policy.ResourceClient, &client):
		v.Add("client_id", "not_found")
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).Where("id IN ?", draft.ItemIDs()).Find(&items).Error; err != nil {
		return draft, fmt.Errorf("load items: %w", err)
	}
	byID := make(map[uint]*models.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, l := range draft.Lines {
		item, ok := byID[l.ItemID]
		if !ok || !s.gate.Can(ctx, ownerID, policy.ActionView, policy.ResourceItem, item) {
			v.Add(forms.LineField(l.Row, "item_id"), "not_found")
		}
	}
	if !v.Empty() {
		return draft, invalid(v)
	}
	return draft, nil
}

// replaceLines inserts lines for q and stores the recomputed total.
func replaceLines(tx *gorm.DB, q *models.Quote, lines []forms.LineDraft) error {
	rows := make([]models.QuoteItem, len(lines))
	subtotals := make([]decimal.Decimal, len(lines))
	for i, l := range lines {
		rows[i] = models.QuoteItem{QuoteID: q.ID, ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
		subtotals[i] = money.LineTotal(l.Quantity, l.UnitPrice)
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert quote lines: %w", err)
	}
	q.Total = money.Sum(subtotals...)
	if err := tx.Model(q).Update("total", q.Total).Error; err != nil {
		return fmt.Errorf("store quote total: %w", err)
	}
	q.Lines = rows
	return nil
}

// Get loads an owned quote with its client and lines. Deleted clients and
// items are still shown on the quotes that reference them.
func (s *QuoteService) Get(ctx context.Context, ownerID, id uint) (*models.Quote, error) {
	var q models.Quote
	err := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID)).
		Preload("Client", unscoped).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Lines.Item", unscoped).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// List returns the owner's live quotes, newest first.
func (s *QuoteService) List(ctx context.Context, ownerID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID), models.Newest).
		Preload("Client", unscoped).
		Find(&quotes).Error
	return quotes, err
}

// Delete soft-deletes an owned quote. Its lines stay for the record.
func (s *QuoteService) Delete(ctx context.Context, ownerID, id uint) error {
	res := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID)).Delete(&models.Quote{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Document gathers everything the PDF needs for an owned quote.
func (s *QuoteService) Document(ctx context.Context, ownerID, id uint) (pdf.QuoteDocument, error) {
	q, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return pdf.QuoteDocument{}, err
	}
	if !s.gate.Can(ctx, ownerID, policy.ActionExport, policy.ResourceQuote, q) {
		return pdf.QuoteDocument{}, ErrNotFound
	}
	var user models.User
	if err := s.db.WithContext(ctx).Preload("CompanyProfile").First(&user, ownerID).Error; err != nil {
		return pdf.QuoteDocument{}, fmt.Errorf("load issuer: %w", err)
	}

	doc := pdf.QuoteDocument{
		Number:    q.ID,
		CreatedAt: q.CreatedAt,
		Status:    q.Status.Label(),
		IssuedBy:  user.DisplayName(),
		Client:    pdf.Party{Name: q.Client.Name, Email: q.Client.Email},
		Total:     q.Total,
	}
	for _, l := range q.Lines {
		doc.Lines = append(doc.Lines, pdf.Line{
			Description: l.Item.Label(),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}
	if p := user.CompanyProfile; p != nil {
		doc.Company = &pdf.Company{
			LegalName:    p.LegalName,
			TaxID:        p.TaxID,
			TaxAddress:   p.TaxAddress,
			ContactEmail: p.ContactEmail,
			ContactPhone: p.ContactPhone,
		}
		if p.Logo != "" && s.store != nil {
			logo, err := storage.ReadAll(ctx, s.store, p.Logo)
			if err != nil {
				log.Printf("quote %d: logo %s unavailable: %v", q.ID, p.Logo, err)
			} else {
				doc.Company.Logo = logo
			}
		}
	}
	return doc, nil
}
