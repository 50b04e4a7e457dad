package db

import (
	"errors"
	"fmt"
	"log"

	"github.com/corequote/corequote/internal/config"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/migrations"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// skuIndex enforces case-insensitive SKU uniqueness per owner among live
// items. The statement is valid for both sqlite and postgres.
const skuIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_items_owner_sku ON items (user_id, lower(sku)) WHERE deleted_at IS NULL`

var requiredTables = []string{"users", "company_profiles", "clients", "items", "quotes", "quote_items", "reports"}

// Migrate brings the schema up to date. With sqlMigrations on a postgres
// database the embedded SQL files run through golang-migrate; otherwise
// AutoMigrate is used, which is what tests and sqlite rely on.
func Migrate(conn *gorm.DB, cfg config.DatabaseConfig, sqlMigrations bool) error {
	if sqlMigrations && !cfg.IsSQLite() {
		log.Println("Running SQL migrations...")
		if err := runSQLMigrations(cfg.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if err := conn.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
		if err := conn.Exec(skuIndex).Error; err != nil {
			return fmt.Errorf("create sku index: %w", err)
		}
	}
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// runSQLMigrations applies migrations/*.sql from the embedded filesystem.
func runSQLMigrations(url string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
