package services

import (
	"context"
	"fmt"

	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/validation"
	"gorm.io/gorm"
)

// DuplicateSKU is the violation code for a SKU already used by a live item.
const DuplicateSKU = "duplicate_sku"

// ItemService manages inventory items and the per-owner SKU rule.
type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

func (s *ItemService) Get(ctx context.Context, ownerID, id uint) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID)).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// List returns live items, newest first.
func (s *ItemService) List(ctx context.Context, ownerID uint) ([]models.Item, error) {
	var items []models.Item
	err := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID), models.Newest).Find(&items).Error
	return items, err
}

// Options returns live items ordered by SKU for quote line selects.
func (s *ItemService) Options(ctx context.Context, ownerID uint) ([]models.Item, error) {
	var items []models.Item
	err := s.db.WithContext(ctx).Scopes(models.OwnedBy(ownerID)).Order("sku").Find(&items).Error
	return items, err
}

func (s *ItemService) Create(ctx context.Context, ownerID uint, in forms.ItemInput) (*models.Item, error) {
	item, v := in.Validate()
	if v != nil {
		return nil, invalid(v)
	}
	item.UserID = ownerID
	if err := s.checkSKU(ctx, ownerID, item.SKU, 0); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, skuError(err)
	}
	return &item, nil
}

func (s *ItemService) Update(ctx context.Context, ownerID, id uint, in forms.ItemInput) (*models.Item, error) {
	item, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	next, v := in.Validate()
	if v != nil {
		return nil, invalid(v)
	}
	if err := s.checkSKU(ctx, ownerID, next.SKU, id); err != nil {
		return nil, err
	}
	item.SKU, item.Name, item.Stock, item.Cost = next.SKU, next.Name, next.Stock, next.Cost
	err = s.db.WithContext(ctx).Model(item).
		Select("sku", "name", "stock", "cost").
		Updates(item).Error
	if err != nil {
		return nil, skuError(err)
	}
	return item, nil
}

// checkSKU rejects a SKU another live item of the owner already uses,
// ignoring case. exceptID is the item being edited.
func (s *ItemService) checkSKU(ctx context.Context, ownerID uint, sku string, exceptID uint) error {
	q := s.db.WithContext(ctx).Model(&models.Item{}).Scopes(models.OwnedBy(ownerID)).
		Where("lower(sku) = lower(?)", sku)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if n > 0 {
		return invalid(validation.Violations{"sku": DuplicateSKU})
	}
	return nil
}

// skuError turns a unique index race into the same field error the
// pre-check produces.
func skuError(err error) error {
	if isUniqueViolation(err) {
		return invalid(validation.Violations{"sku": DuplicateSKU})
	}
	return fmt.Errorf("save item: %w", err)
}

// InUse reports whether a live quote has a line for the item.
func (s *ItemService) InUse(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.QuoteItem{}).
		Joins("JOIN quotes ON quotes.id = quote_items.quote_id AND quotes.deleted_at IS NULL").
		Where("quote_items.item_id = ?", id).
		Count(&n).Error
	return n > 0, err
}

// Delete soft-deletes an owned item unless a live quote still uses it.
func (s *ItemService) Delete(ctx context.Context, ownerID, id uint) error {
	item, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	used, err := s.InUse(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("check item usage: %w", err)
	}
	if used {
		return ErrItemInUse
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

