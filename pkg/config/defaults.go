package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
	// Zone database for charts.timezone on hosts without one
	_ "time/tzdata"

	"github.com/chrissnell/canalwatch/internal/charts"
	"github.com/chrissnell/canalwatch/internal/constants"
	"github.com/chrissnell/canalwatch/internal/types"
)

var colorPattern = regexp.MustCompile(`^(rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)|#[0-9a-fA-F]{6})$`)

// ApplyDefaults fills every unset field with its default value
func ApplyDefaults(c *ConfigData) {
	if c.Service.Timeout == 0 {
		c.Service.Timeout = constants.ServiceTimeout
	}
	if c.Service.HistoryLimit == 0 {
		c.Service.HistoryLimit = constants.HistoryLimit
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = constants.RefreshInterval
	}
	if len(c.Locations) == 0 {
		c.Locations = types.DefaultLocations()
	}
	if c.Charts.Width == 0 {
		c.Charts.Width = 800
	}
	if c.Charts.Height == 0 {
		c.Charts.Height = 400
	}
	if c.Web.ListenAddr == "" {
		c.Web.ListenAddr = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = constants.DefaultHTTPPort
	}
	if c.Web.PageTitle == "" {
		c.Web.PageTitle = "Rideau Canal Ice Conditions"
	}
	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB == 0 {
			c.Logging.MaxSizeMB = 50
		}
		if c.Logging.MaxBackups == 0 {
			c.Logging.MaxBackups = 3
		}
		if c.Logging.MaxAgeDays == 0 {
			c.Logging.MaxAgeDays = 28
		}
	}
}

// Validate checks a configuration that has already had defaults applied
func Validate(c *ConfigData) error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url must be set")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service.base_url is not an absolute URL: %q", c.Service.BaseURL)
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must be positive")
	}
	if c.Service.HistoryLimit < 1 {
		return fmt.Errorf("service.history_limit must be at least 1")
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s, got %v", c.Refresh.Interval)
	}

	seen := make(map[string]bool)
	for i, loc := range c.Locations {
		if loc.Key == "" {
			return fmt.Errorf("location %d has no key", i)
		}
		if seen[loc.Key] {
			return fmt.Errorf("duplicate location key: %s", loc.Key)
		}
		seen[loc.Key] = true
		if loc.Name == "" {
			return fmt.Errorf("location %s has no name", loc.Key)
		}
		if !colorPattern.MatchString(loc.Color) {
			return fmt.Errorf("location %s has an invalid color %q (use rgb(r, g, b) or #rrggbb)", loc.Key, loc.Color)
		}
		// Components must also be in range for the chart renderer
		if _, err := charts.ParseColor(loc.Color); err != nil {
			return fmt.Errorf("location %s: %w", loc.Key, err)
		}
	}

	if c.Charts.Timezone != "" {
		if _, err := time.LoadLocation(c.Charts.Timezone); err != nil {
			return fmt.Errorf("charts.timezone: %w", err)
		}
	}
	if (c.Web.TLSCertPath == "") != (c.Web.TLSKeyPath == "") {
		return fmt.Errorf("web.tls_cert and web.tls_key must be set together")
	}

	return nil
}

func finalize(c *ConfigData) (*ConfigData, error) {
	ApplyDefaults(c)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}
