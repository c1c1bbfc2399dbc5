package types

import "time"

// LocationSnapshot holds the latest measured values for one location as
// reported by the monitoring service's /api/latest endpoint.
type LocationSnapshot struct {
	// LocationID is the stable identifier, when the service supplies one
	LocationID            string  `json:"location_id,omitempty"`
	Location              string  `json:"location"`
	AvgIceThickness       float64 `json:"avg_ice_thickness"`
	AvgSurfaceTemperature float64 `json:"avg_surface_temperature"`
	MaxSnowAccumulation   float64 `json:"max_snow_accumulation"`
	SafetyStatus          string  `json:"safety_status"`
}

// OverallStatus is the aggregate safety verdict across all locations.
// The value set is defined by the service and treated as opaque.
type OverallStatus string

// HistoricalPoint is one entry of a location's recent series.  Series are
// ordered oldest to newest as returned by the service and are never re-sorted.
type HistoricalPoint struct {
	EventTime             time.Time `json:"event_time"`
	AvgIceThickness       float64   `json:"avg_ice_thickness"`
	AvgSurfaceTemperature float64   `json:"avg_surface_temperature"`
}

// Location is a member of the canonical location set.  The set comes from
// configuration, never from data returned by the service.
type Location struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Match   string   `json:"match,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// DefaultLocations returns the canonical canal locations in rule order.
func DefaultLocations() []Location {
	return []Location{
		{Key: "dowslake", Name: "Dow's Lake", Color: "rgb(75, 192, 192)", Match: "dow"},
		{Key: "fifthave", Name: "Fifth Avenue", Color: "rgb(255, 99, 132)", Match: "fifth"},
		{Key: "nac", Name: "NAC", Color: "rgb(54, 162, 235)", Match: "nac"},
	}
}
