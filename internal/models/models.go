package models

import "gorm.io/gorm"

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&CompanyProfile{},
		&Client{},
		&Item{},
		&Quote{},
		&QuoteItem{},
		&Report{},
	}
}

// OwnedBy scopes a query to rows owned by userID. Combined with the
// DeletedAt default filter it is the read path for every owned entity.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Newest orders by creation time, newest first, with id as tiebreaker.
func Newest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
