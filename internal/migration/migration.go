package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	productiondomain "github.com/smallbiznis/vyapar/internal/production/domain"
	purchasedomain "github.com/smallbiznis/vyapar/internal/purchase/domain"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&companydomain.Company{},
		&authdomain.User{},
		&productdomain.Product{},
		&rawmaterialdomain.RawMaterial{},
		&customerdomain.Customer{},
		&supplierdomain.Supplier{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&purchasedomain.Purchase{},
		&purchasedomain.PurchaseItem{},
		&productiondomain.ProductionBatch{},
		&productiondomain.ProductionItem{},
		&paymentdomain.Payment{},
		&stockdomain.StockMovement{},
		&auditdomain.AuditLog{},
	}
}

// AutoMigrate creates the schema from the gorm models. It backs sqlite and
// mysql deployments and tests; postgres uses the versioned SQL files.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
