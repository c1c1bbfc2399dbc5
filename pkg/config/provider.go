package config

import (
	"time"

	"github.com/chrissnell/canalwatch/internal/types"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration, with defaults applied and validated
	LoadConfig() (*ConfigData, error)

	// Get the canonical location set
	GetLocations() ([]types.Location, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Service   ServiceData      `json:"service"`
	Refresh   RefreshData      `json:"refresh"`
	Locations []types.Location `json:"locations"`
	Charts    ChartsData       `json:"charts"`
	Web       WebData          `json:"web"`
	Logging   LoggingData      `json:"logging"`
}

// ServiceData describes the remote monitoring service
type ServiceData struct {
	BaseURL      string        `json:"base_url"`
	Timeout      time.Duration `json:"timeout"`
	HistoryLimit int           `json:"history_limit"`
}

// RefreshData holds the refresh cycle settings.  The interval is read once at
// startup and never changes while the process runs.
type RefreshData struct {
	Interval time.Duration `json:"interval"`
}

// ChartsData holds chart rendering settings
type ChartsData struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Timezone string `json:"timezone,omitempty"`

	// StrictAlignment rejects a chart refresh whose per-location series do
	// not share the label series' length and timestamps
	StrictAlignment bool `json:"strict_alignment,omitempty"`
}

// WebData configures the display server
type WebData struct {
	ListenAddr  string `json:"listen_addr,omitempty"`
	Port        int    `json:"port,omitempty"`
	PageTitle   string `json:"page_title,omitempty"`
	TLSCertPath string `json:"tls_cert,omitempty"`
	TLSKeyPath  string `json:"tls_key,omitempty"`
}

// LoggingData configures the application logger
type LoggingData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// DisplayLocation returns the time zone used for chart labels and the
// last-update stamp, falling back to the process-local zone
func (c ChartsData) DisplayLocation() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
