// Package constants defines application-wide constants and version information.
package constants

import (
	"runtime"
	"time"
)

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

const (
	// RefreshInterval is the fixed cadence of the refresh cycle
	RefreshInterval = 30 * time.Second

	// HistoryLimit is the number of historical points requested per location
	HistoryLimit = 12

	// ServiceTimeout is the default transport timeout for monitoring service requests
	ServiceTimeout = 10 * time.Second

	// DefaultHTTPPort is the port the display server listens on when none is configured
	DefaultHTTPPort = 8080
)

// UI binding targets
const (
	IcePrefix         = "ice"
	TempPrefix        = "temp"
	SnowPrefix        = "snow"
	StatusPrefix      = "status"
	OverallStatusID   = "overallStatus"
	LastUpdateID      = "lastUpdate"
	IceChartTarget    = "iceThicknessChart"
	TempChartTarget   = "temperatureChart"
	LabelTimeFormat   = "15:04"
	UpdateTimeFormat  = "15:04:05"
	FetchErrorMessage = "Failed to fetch latest data. Retrying..."
)

// BindingID returns the UI binding id for a per-location field, e.g. "ice-dowslake"
func BindingID(prefix, locationKey string) string {
	return prefix + "-" + locationKey
}
