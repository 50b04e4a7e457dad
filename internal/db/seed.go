package db

import (
	"errors"
	"fmt"

	"github.com/corequote/corequote/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var sampleClients = []models.Client{
	{Name: "Comercializadora del Centro", Email: "compras@centro.mx"},
	{Name: "Talleres Hernández"},
}

var sampleItems = []models.Item{
	{SKU: "TOR-001", Name: "Tornillo hexagonal 1/4", Stock: 250, Cost: decimal.RequireFromString("1.80")},
	{SKU: "CAB-010", Name: "Cable THW calibre 12 (m)", Stock: 4, Cost: decimal.RequireFromString("14.50")},
	{SKU: "SRV-INS", Name: "Servicio de instalación", Stock: 0, Cost: decimal.RequireFromString("450.00")},
}

// SeedSamples gives a user a few demo clients and items. Rows are matched by
// name/SKU so running it twice does not duplicate anything.
func SeedSamples(conn *gorm.DB, userID uint) error {
	for _, c := range sampleClients {
		var existing models.Client
		err := conn.Scopes(models.OwnedBy(userID)).Where("name = ?", c.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.UserID = userID
			if err := conn.Create(&c).Error; err != nil {
				return fmt.Errorf("seed client %q: %w", c.Name, err)
			}
		} else if err != nil {
			return err
		}
	}
	for _, it := range sampleItems {
		var existing models.Item
		err := conn.Scopes(models.OwnedBy(userID)).Where("lower(sku) = lower(?)", it.SKU).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			it.UserID = userID
			if err := conn.Create(&it).Error; err != nil {
				return fmt.Errorf("seed item %q: %w", it.SKU, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
