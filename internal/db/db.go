package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres:// and postgresql:// database drivers.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookstore/internal/config"
	"bookstore/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// requiredTables must exist once migrations have run.
var requiredTables = []string{"books", "authors", "book_authors", "customer_phones", "carts", "orders", "publisher_orders"}

// partialIndexes have no gorm tag form. They mirror the ones in the SQL
// migrations so both paths enforce one pending publisher order per book and
// one primary phone per customer.
var partialIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_publisher_orders_one_pending ON publisher_orders (isbn) WHERE status = 'Pending'",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_customer_phones_one_primary ON customer_phones (customer_id) WHERE is_primary",
}

// Connect opens the PostgreSQL pool. TranslateError turns driver duplicate-key
// and foreign-key errors into gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func Connect(cfg config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.DBDebug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get generic DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to date according to cfg.Migrations and seeds
// reference data when cfg.Seed is set.
func Migrate(db *gorm.DB, cfg config.Config) error {
	switch cfg.Migrations {
	case config.MigrateSQL:
		log.Println("[INFO] migrate: applying SQL migrations")
		if err := runSQLMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	case config.MigrateAuto:
		log.Println("[INFO] migrate: running AutoMigrate")
		if err := AutoMigrate(db); err != nil {
			return err
		}
	default:
		log.Println("[INFO] migrate: skipped")
	}

	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}

	if cfg.Seed {
		if err := Seed(db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// AutoMigrate creates or updates every table from the gorm models, then adds
// the partial unique indexes.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}

// runSQLMigrations applies the embedded migrations. The DSN must be in URL
// form (postgres://...).
func runSQLMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
