package config

import (
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/chrissnell/canalwatch/internal/types"
	"github.com/chrissnell/canalwatch/pkg/migrate"
	_ "modernc.org/sqlite"
)

// Schema migrations for the configuration database
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Migrator returns a migrator over the embedded configuration schema
func (s *SQLiteProvider) Migrator() *migrate.Migrator {
	return migrate.NewMigrator(s.db, migrate.NewFSProvider(migrationsFS, "migrations", "schema_migrations"))
}

// InitSchema brings the configuration schema up to the latest version
func (s *SQLiteProvider) InitSchema() error {
	if err := s.Migrator().MigrateUp(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	settings, err := s.getSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	config := &ConfigData{}
	if err := applySettings(settings, config); err != nil {
		return nil, err
	}

	locations, err := s.GetLocations()
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	config.Locations = locations

	config, err = finalize(config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", s.dbPath, err)
	}
	return config, nil
}

func (s *SQLiteProvider) getSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// GetLocations returns the canonical location set in rule order
func (s *SQLiteProvider) GetLocations() ([]types.Location, error) {
	query := `
		SELECT key, name, color, match_substring, aliases
		FROM locations
		ORDER BY position
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []types.Location
	for rows.Next() {
		var loc types.Location
		var match, aliases sql.NullString

		if err := rows.Scan(&loc.Key, &loc.Name, &loc.Color, &match, &aliases); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}

		if match.Valid {
			loc.Match = match.String
		}
		if aliases.Valid && aliases.String != "" {
			for _, a := range strings.Split(aliases.String, ",") {
				if a = strings.TrimSpace(a); a != "" {
					loc.Aliases = append(loc.Aliases, a)
				}
			}
		}

		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	if err := s.InitSchema(); err != nil {
		return err
	}

	// Start transaction
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{"DELETE FROM settings", "DELETE FROM locations"} {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to clear existing config: %w", err)
		}
	}

	for key, value := range settingsFromConfig(configData) {
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to insert setting %s: %w", key, err)
		}
	}

	for i, loc := range configData.Locations {
		_, err := tx.Exec(
			`INSERT INTO locations (position, key, name, color, match_substring, aliases) VALUES (?, ?, ?, ?, ?, ?)`,
			i, loc.Key, loc.Name, loc.Color, nullString(loc.Match), nullString(strings.Join(loc.Aliases, ",")),
		)
		if err != nil {
			return fmt.Errorf("failed to insert location %s: %w", loc.Key, err)
		}
	}

	// Commit transaction
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// applySettings maps flat settings rows onto the configuration structure
func applySettings(settings map[string]string, c *ConfigData) error {
	var err error
	for key, value := range settings {
		switch key {
		case "service.base_url":
			c.Service.BaseURL = value
		case "service.timeout":
			c.Service.Timeout, err = parseDuration(key, value)
		case "service.history_limit":
			c.Service.HistoryLimit, err = parseInt(key, value)
		case "refresh.interval":
			c.Refresh.Interval, err = parseDuration(key, value)
		case "charts.width":
			c.Charts.Width, err = parseInt(key, value)
		case "charts.height":
			c.Charts.Height, err = parseInt(key, value)
		case "charts.timezone":
			c.Charts.Timezone = value
		case "charts.strict_alignment":
			c.Charts.StrictAlignment, err = parseBool(key, value)
		case "web.listen_addr":
			c.Web.ListenAddr = value
		case "web.port":
			c.Web.Port, err = parseInt(key, value)
		case "web.page_title":
			c.Web.PageTitle = value
		case "web.tls_cert":
			c.Web.TLSCertPath = value
		case "web.tls_key":
			c.Web.TLSKeyPath = value
		case "logging.debug":
			c.Logging.Debug, err = parseBool(key, value)
		case "logging.file":
			c.Logging.File = value
		case "logging.max_size_mb":
			c.Logging.MaxSizeMB, err = parseInt(key, value)
		case "logging.max_backups":
			c.Logging.MaxBackups, err = parseInt(key, value)
		case "logging.max_age_days":
			c.Logging.MaxAgeDays, err = parseInt(key, value)
		default:
			return fmt.Errorf("unknown setting: %s", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// settingsFromConfig is the inverse of applySettings; zero values are omitted
func settingsFromConfig(c *ConfigData) map[string]string {
	settings := make(map[string]string)
	put := func(key, value string) {
		if value != "" && value != "0" && value != "0s" && value != "false" {
			settings[key] = value
		}
	}

	put("service.base_url", c.Service.BaseURL)
	put("service.timeout", c.Service.Timeout.String())
	put("service.history_limit", strconv.Itoa(c.Service.HistoryLimit))
	put("refresh.interval", c.Refresh.Interval.String())
	put("charts.width", strconv.Itoa(c.Charts.Width))
	put("charts.height", strconv.Itoa(c.Charts.Height))
	put("charts.timezone", c.Charts.Timezone)
	put("charts.strict_alignment", strconv.FormatBool(c.Charts.StrictAlignment))
	put("web.listen_addr", c.Web.ListenAddr)
	put("web.port", strconv.Itoa(c.Web.Port))
	put("web.page_title", c.Web.PageTitle)
	put("web.tls_cert", c.Web.TLSCertPath)
	put("web.tls_key", c.Web.TLSKeyPath)
	put("logging.debug", strconv.FormatBool(c.Logging.Debug))
	put("logging.file", c.Logging.File)
	put("logging.max_size_mb", strconv.Itoa(c.Logging.MaxSizeMB))
	put("logging.max_backups", strconv.Itoa(c.Logging.MaxBackups))
	put("logging.max_age_days", strconv.Itoa(c.Logging.MaxAgeDays))

	return settings
}

func parseInt(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return n, nil
}

func parseBool(field, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}
