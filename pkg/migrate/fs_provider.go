package migrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// migrationFile matches 001_migration_name.up.sql and 001_migration_name.down.sql
var migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// FSProvider loads SQLite migrations from a filesystem, usually an embedded one
type FSProvider struct {
	fsys           fs.FS
	dir            string
	migrationTable string
}

// NewFSProvider creates a migration provider reading dir within fsys
func NewFSProvider(fsys fs.FS, dir string, migrationTable string) *FSProvider {
	if migrationTable == "" {
		migrationTable = "schema_migrations"
	}
	if dir == "" {
		dir = "."
	}
	return &FSProvider{
		fsys:           fsys,
		dir:            dir,
		migrationTable: migrationTable,
	}
}

// GetMigrations loads all migrations, sorted by version
func (p *FSProvider) GetMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(p.fsys, p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory %s: %w", p.dir, err)
	}

	byVersion := make(map[int]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}

		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in file %s: %w", e.Name(), err)
		}

		content, err := fs.ReadFile(p.fsys, p.dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}

		if byVersion[version] == nil {
			byVersion[version] = &Migration{
				Version: version,
				Name:    strings.ReplaceAll(m[2], "_", " "),
			}
		}
		if m[3] == "up" {
			byVersion[version].Up = string(content)
		} else {
			byVersion[version].Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		migrations = append(migrations, *migration)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// CreateMigrationTable creates the migration tracking table
func (p *FSProvider) CreateMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`, p.migrationTable)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// GetCurrentVersion returns the highest applied migration version
func (p *FSProvider) GetCurrentVersion(db *sql.DB) (int, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", p.migrationTable)

	var version int
	if err := db.QueryRow(query).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// SetVersion records version as the current one.  Rolling back to 0 clears
// the table; rolling back further than one step removes the newer rows.
func (p *FSProvider) SetVersion(db DB, version int) error {
	var err error
	if version == 0 {
		_, err = db.Exec(fmt.Sprintf("DELETE FROM %s", p.migrationTable))
	} else {
		if _, err = db.Exec(fmt.Sprintf("DELETE FROM %s WHERE version > ?", p.migrationTable), version); err == nil {
			_, err = db.Exec(fmt.Sprintf(`
				INSERT OR REPLACE INTO %s (version, applied_at)
				VALUES (?, CURRENT_TIMESTAMP)
			`, p.migrationTable), version)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	return nil
}
