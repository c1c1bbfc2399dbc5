package dashboard

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/canalwatch/internal/constants"
	"github.com/chrissnell/canalwatch/internal/locations"
	"github.com/chrissnell/canalwatch/internal/types"
)

// Renderer writes snapshot and status values into a Page
type Renderer struct {
	page     *Page
	resolver *locations.Resolver
	tz       *time.Location
}

// NewRenderer creates a renderer.  tz is the zone used for the last-update stamp.
func NewRenderer(page *Page, resolver *locations.Resolver, tz *time.Location) *Renderer {
	if tz == nil {
		tz = time.Local
	}
	return &Renderer{page: page, resolver: resolver, tz: tz}
}

// Page returns the page this renderer writes to
func (r *Renderer) Page() *Page {
	return r.page
}

// RenderSnapshots updates the card of every snapshot's location.  A
// snapshot whose bindings are missing is skipped; the remaining cards are
// still rendered and the skipped bindings are reported in the returned error.
func (r *Renderer) RenderSnapshots(snapshots []types.LocationSnapshot) error {
	var errs []error
	for _, s := range snapshots {
		key := r.resolver.Resolve(s)

		set := func(prefix string, v float64) {
			if err := r.page.SetText(constants.BindingID(prefix, key), FormatMeasurement(v)); err != nil {
				errs = append(errs, err)
			}
		}
		set(constants.IcePrefix, s.AvgIceThickness)
		set(constants.TempPrefix, s.AvgSurfaceTemperature)
		set(constants.SnowPrefix, s.MaxSnowAccumulation)

		if err := r.page.SetBadge(constants.BindingID(constants.StatusPrefix, key), s.SafetyStatus, BadgeClass(s.SafetyStatus)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RenderOverallStatus updates the overall status badge
func (r *Renderer) RenderOverallStatus(status types.OverallStatus) error {
	return r.page.SetBadge(constants.OverallStatusID, string(status), BadgeClass(string(status)))
}

// RenderLastUpdate stamps the last-update binding with now as local hour:minute:second
func (r *Renderer) RenderLastUpdate(now time.Time) error {
	return r.page.SetText(constants.LastUpdateID, now.In(r.tz).Format(constants.UpdateTimeFormat))
}

// ShowError surfaces a transient error notice to the user
func (r *Renderer) ShowError(message string, now time.Time) {
	r.page.ShowNotice(message, now)
}

// ClearError removes any error notice
func (r *Renderer) ClearError() {
	r.page.ClearNotice()
}

// FormatMeasurement formats a measurement rounded to one decimal place
func FormatMeasurement(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// BadgeClass is the style class of a safety badge: the status lowercased
func BadgeClass(status string) string {
	return strings.ToLower(status)
}
