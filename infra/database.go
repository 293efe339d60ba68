package infra

import (
	"errors"
	"fmt"
	"strings"

	infra_repository "github.com/amirasaad/accounts/infra/repository"
	"github.com/amirasaad/accounts/infra/migrations"
	"github.com/amirasaad/accounts/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// NewDBConnection opens the database described by cnf. URLs starting with
// sqlite:// open a local SQLite file; anything else is a postgres DSN.
// appEnv selects the gorm log level.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return OpenDB(Dialector(cnf.Url), cnf, appEnv)
}

// Dialector picks the gorm dialector for databaseUrl.
func Dialector(databaseUrl string) gorm.Dialector {
	if path, ok := strings.CutPrefix(databaseUrl, sqlitePrefix); ok {
		return sqlite.Open(path)
	}
	return postgres.Open(databaseUrl)
}

// OpenDB opens a gorm connection over dialector and applies the pool settings.
func OpenDB(dialector gorm.Dialector, cnf *config.DB, appEnv string) (*gorm.DB, error) {
	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cnf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cnf.ConnMaxLifetime)

	return connection, nil
}

// Migrate brings the accounts schema up to date. Postgres runs the embedded
// versioned migrations; other dialects use gorm's AutoMigrate.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return db.AutoMigrate(&infra_repository.Account{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
