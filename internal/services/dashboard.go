package services

import (
	"context"
	"fmt"

	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// LowStockThreshold is the stock level at or below which an item is
	// listed as running low.
	LowStockThreshold = 5
	lowStockPreview   = 5
)

// Summary holds the home page metrics for one owner.
type Summary struct {
	TotalProducts     int64
	TotalStock        int64
	InventoryValue    decimal.Decimal
	LowStockThreshold int
	LowStockTotal     int64
	LowStockPreview   []models.Item
	ExtraLowStock     int64
	TotalRevenue      decimal.Decimal
	TotalCost         decimal.Decimal
	TotalProfit       decimal.Decimal
	MarginPercentage  decimal.Decimal
	HasData           bool
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Summary computes inventory and sales metrics. Amounts are summed with
// decimal arithmetic in Go, so sqlite and postgres agree to the cent.
func (s *DashboardService) Summary(ctx context.Context, ownerID uint) (*Summary, error) {
	db := s.db.WithContext(ctx)
	sum := &Summary{LowStockThreshold: LowStockThreshold}

	var items []models.Item
	if err := db.Scopes(models.OwnedBy(ownerID)).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	values := make([]decimal.Decimal, 0, len(items))
	for i := range items {
		sum.TotalStock += int64(items[i].Stock)
		values = append(values, items[i].InventoryValue())
	}
	sum.TotalProducts = int64(len(items))
	sum.InventoryValue = money.Sum(values...)

	low := db.Model(&models.Item{}).Scopes(models.OwnedBy(ownerID)).Where("stock <= ?", LowStockThreshold)
	if err := low.Count(&sum.LowStockTotal).Error; err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	err := db.Scopes(models.OwnedBy(ownerID)).Where("stock <= ?", LowStockThreshold).
		Order("stock").Order("name").Limit(lowStockPreview).
		Find(&sum.LowStockPreview).Error
	if err != nil {
		return nil, fmt.Errorf("low stock preview: %w", err)
	}
	sum.ExtraLowStock = max(sum.LowStockTotal-int64(len(sum.LowStockPreview)), 0)

	// Lines of the owner's live quotes, costed at the item's current cost.
	var lines []models.QuoteItem
	err = db.Select("quote_items.*").
		Joins("JOIN quotes ON quotes.id = quote_items.quote_id AND quotes.deleted_at IS NULL").
		Where("quotes.user_id = ?", ownerID).
		Preload("Item", unscoped).
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("load quote lines: %w", err)
	}
	revenue := make([]decimal.Decimal, 0, len(lines))
	cost := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		revenue = append(revenue, money.LineTotal(l.Quantity, l.UnitPrice))
		cost = append(cost, money.LineTotal(l.Quantity, l.Item.Cost))
	}
	sum.TotalRevenue = money.Sum(revenue...)
	sum.TotalCost = money.Sum(cost...)
	sum.TotalProfit = sum.TotalRevenue.Sub(sum.TotalCost)
	sum.MarginPercentage = money.Percent(sum.TotalProfit, sum.TotalRevenue)
	sum.HasData = sum.TotalProducts > 0 || sum.TotalRevenue.IsPositive()
	return sum, nil
}
