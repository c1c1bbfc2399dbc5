package config

import (
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/canalwatch/internal/types"
	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := parseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	config, err = finalize(config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

func parseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	timeout, err := parseDuration("service.timeout", yamlConfig.Service.Timeout)
	if err != nil {
		return nil, err
	}
	interval, err := parseDuration("refresh.interval", yamlConfig.Refresh.Interval)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Service: ServiceData{
			BaseURL:      yamlConfig.Service.BaseURL,
			Timeout:      timeout,
			HistoryLimit: yamlConfig.Service.HistoryLimit,
		},
		Refresh: RefreshData{Interval: interval},
		Charts: ChartsData{
			Width:           yamlConfig.Charts.Width,
			Height:          yamlConfig.Charts.Height,
			Timezone:        yamlConfig.Charts.Timezone,
			StrictAlignment: yamlConfig.Charts.StrictAlignment,
		},
		Web: WebData{
			ListenAddr:  yamlConfig.Web.ListenAddr,
			Port:        yamlConfig.Web.Port,
			PageTitle:   yamlConfig.Web.PageTitle,
			TLSCertPath: yamlConfig.Web.TLSCert,
			TLSKeyPath:  yamlConfig.Web.TLSKey,
		},
		Logging: LoggingData{
			Debug:      yamlConfig.Logging.Debug,
			File:       yamlConfig.Logging.File,
			MaxSizeMB:  yamlConfig.Logging.MaxSizeMB,
			MaxBackups: yamlConfig.Logging.MaxBackups,
			MaxAgeDays: yamlConfig.Logging.MaxAgeDays,
		},
	}

	for _, loc := range yamlConfig.Locations {
		config.Locations = append(config.Locations, types.Location{
			Key:     loc.Key,
			Name:    loc.Name,
			Color:   loc.Color,
			Match:   loc.Match,
			Aliases: loc.Aliases,
		})
	}

	return config, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// GetLocations returns the canonical location set
func (y *YAMLProvider) GetLocations() ([]types.Location, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Locations, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type ConfigYAML struct {
	Service   ServiceYAML    `yaml:"service"`
	Refresh   RefreshYAML    `yaml:"refresh,omitempty"`
	Locations []LocationYAML `yaml:"locations,omitempty"`
	Charts    ChartsYAML     `yaml:"charts,omitempty"`
	Web       WebYAML        `yaml:"web,omitempty"`
	Logging   LoggingYAML    `yaml:"logging,omitempty"`
}

type ServiceYAML struct {
	BaseURL      string `yaml:"base_url"`
	Timeout      string `yaml:"timeout,omitempty"`
	HistoryLimit int    `yaml:"history_limit,omitempty"`
}

type RefreshYAML struct {
	Interval string `yaml:"interval,omitempty"`
}

type LocationYAML struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	Color   string   `yaml:"color"`
	Match   string   `yaml:"match,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
}

type ChartsYAML struct {
	Width           int    `yaml:"width,omitempty"`
	Height          int    `yaml:"height,omitempty"`
	Timezone        string `yaml:"timezone,omitempty"`
	StrictAlignment bool   `yaml:"strict_alignment,omitempty"`
}

type WebYAML struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	PageTitle  string `yaml:"page_title,omitempty"`
	TLSCert    string `yaml:"tls_cert,omitempty"`
	TLSKey     string `yaml:"tls_key,omitempty"`
}

type LoggingYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}
