package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cashbook/internal/logger"
	"cashbook/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table managed by the migrations, for AutoMigrate in
// tests and in-memory databases.
var Models = []interface{}{
	&models.Slot{},
	&models.AuditLog{},
	&models.ReminderTask{},
}

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager opens the configured database.
func NewManager(config *Config) (*Manager, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  config.DSN(),
			PreferSimpleProtocol: true,
		})
	default:
		if !config.InMemory() {
			if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(config.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if config.Driver == DriverPostgres {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite allows one writer; a single connection also keeps an
		// in-memory database alive for the life of the process.
		sqlDB.SetMaxOpenConns(1)
	}

	return &Manager{db: db, config: config}, nil
}

// RunMigrations applies pending SQL migrations embedded in the binary.
// In-memory SQLite databases are created with AutoMigrate instead, since a
// separate migration connection would see a different database.
func (m *Manager) RunMigrations() error {
	log := logger.Get()
	log.Info("Running database migrations...")

	if m.config.InMemory() {
		if err := m.db.AutoMigrate(Models...); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
		log.Info("Database schema created in memory")
		return nil
	}

	mig, closeFn, err := m.migrator()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// Migrator returns a golang-migrate instance for the configured database
// and a function that releases it.
func (m *Manager) Migrator() (*migrate.Migrate, func(), error) {
	return m.migrator()
}

func (m *Manager) migrator() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create iofs source: %w", err)
	}

	var mig *migrate.Migrate
	switch m.config.Driver {
	case DriverPostgres:
		mig, err = migrate.NewWithSourceInstance("iofs", src, m.config.PostgresURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		// Separate connection so closing the migrator leaves gorm's pool intact.
		migrateDB, err := sql.Open("sqlite3", m.config.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open migration database: %w", err)
		}
		driver, err := sqlite3.WithInstance(migrateDB, &sqlite3.Config{})
		if err != nil {
			_ = migrateDB.Close()
			return nil, nil, fmt.Errorf("failed to create sqlite driver: %w", err)
		}
		mig, err = migrate.NewWithInstance("iofs", src, "sqlite3", driver)
		if err != nil {
			_ = migrateDB.Close()
			return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
	}

	closeFn := func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}
	return mig, closeFn, nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
