// Package migrate applies versioned SQL schema migrations.
package migrate

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/chrissnell/canalwatch/internal/log"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB represents either a database connection or transaction
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MigrationProvider defines how migrations are loaded and tracked
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db *sql.DB) (int, error)
	SetVersion(db DB, version int) error
	CreateMigrationTable(db *sql.DB) error
}

// Migrator handles the execution of migrations
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *sql.DB, provider MigrationProvider) *Migrator {
	return &Migrator{
		db:       db,
		provider: provider,
	}
}

// MigrateUp runs all pending migrations up to the latest version
func (m *Migrator) MigrateUp() error {
	return m.MigrateTo(-1)
}

// MigrateTo runs migrations up or down to reach target.  A target of -1
// means the latest available version.
func (m *Migrator) MigrateTo(target int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return fmt.Errorf("failed to get migrations: %w", err)
	}

	if target == -1 {
		target = 0
		if len(migrations) > 0 {
			target = migrations[len(migrations)-1].Version
		}
	}

	if target < current {
		// Newest first when rolling back
		sort.Slice(migrations, func(i, j int) bool {
			return migrations[i].Version > migrations[j].Version
		})
		for _, migration := range migrations {
			if migration.Version > target && migration.Version <= current {
				if err := m.execute(migration, false); err != nil {
					return fmt.Errorf("failed to roll back migration %d: %w", migration.Version, err)
				}
			}
		}
		return nil
	}

	for _, migration := range migrations {
		if migration.Version > current && migration.Version <= target {
			if err := m.execute(migration, true); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
			}
		}
	}
	return nil
}

// GetCurrentVersion returns the current migration version
func (m *Migrator) GetCurrentVersion() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	return m.provider.GetCurrentVersion(m.db)
}

// GetPendingMigrations returns migrations that haven't been applied yet
func (m *Migrator) GetPendingMigrations() ([]Migration, error) {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return nil, err
	}

	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range migrations {
		if migration.Version > current {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// execute runs a single migration and records the resulting version in the
// same transaction
func (m *Migrator) execute(migration Migration, up bool) error {
	query, direction, version := migration.Up, "up", migration.Version
	if !up {
		query, direction, version = migration.Down, "down", migration.Version-1
	}
	if query == "" {
		return fmt.Errorf("migration %d has no %s SQL", migration.Version, direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(tx, version); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	log.Debugf("applied migration %d (%s) %s", migration.Version, migration.Name, direction)
	return nil
}
