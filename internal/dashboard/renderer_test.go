package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/chrissnell/canalwatch/internal/locations"
	"github.com/chrissnell/canalwatch/internal/types"
)

func newTestRenderer() *Renderer {
	locs := types.DefaultLocations()
	return NewRenderer(NewPage(locs), locations.NewResolver(locs), time.UTC)
}

func TestBadgeClass(t *testing.T) {
	tests := []struct {
		status string
		class  string
	}{
		{"Safe", "safe"},
		{"Caution", "caution"},
		{"Unsafe", "unsafe"},
		{"UNKNOWN", "unknown"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BadgeClass(tt.status); got != tt.class {
			t.Errorf("BadgeClass(%q) = %q, expected %q", tt.status, got, tt.class)
		}
	}
}

func TestFormatMeasurement(t *testing.T) {
	tests := []struct {
		in  float64
		out string
	}{
		{32.15, "32.1"},
		{32.16, "32.2"},
		{-4.2, "-4.2"},
		{3, "3.0"},
		{0, "0.0"},
	}

	for _, tt := range tests {
		if got := FormatMeasurement(tt.in); got != tt.out {
			t.Errorf("FormatMeasurement(%v) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestRenderSnapshots(t *testing.T) {
	r := newTestRenderer()

	err := r.RenderSnapshots([]types.LocationSnapshot{
		{Location: "Dow's Lake", AvgIceThickness: 32.15, AvgSurfaceTemperature: -4.2, MaxSnowAccumulation: 3, SafetyStatus: "Safe"},
		{Location: "Fifth Avenue", AvgIceThickness: 27.5, AvgSurfaceTemperature: -1.04, MaxSnowAccumulation: 0.5, SafetyStatus: "Caution"},
		{Location: "NAC", AvgIceThickness: 22, AvgSurfaceTemperature: 0.3, MaxSnowAccumulation: 1.26, SafetyStatus: "Unsafe"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		id    string
		text  string
		class string
	}{
		{"ice-dowslake", "32.1", ""},
		{"temp-dowslake", "-4.2", ""},
		{"snow-dowslake", "3.0", ""},
		{"status-dowslake", "Safe", "safe"},
		{"ice-fifthave", "27.5", ""},
		{"status-fifthave", "Caution", "caution"},
		{"temp-nac", "0.3", ""},
		{"snow-nac", "1.3", ""},
		{"status-nac", "Unsafe", "unsafe"},
	}

	for _, tt := range tests {
		el, ok := r.Page().Element(tt.id)
		if !ok {
			t.Errorf("binding %s missing", tt.id)
			continue
		}
		if el.Text != tt.text || el.Class != tt.class {
			t.Errorf("%s = %+v, expected text %q class %q", tt.id, el, tt.text, tt.class)
		}
	}
}

func TestRenderSnapshotsSkipsMissingBindings(t *testing.T) {
	r := newTestRenderer()

	err := r.RenderSnapshots([]types.LocationSnapshot{
		{Location: "Somewhere Else", AvgIceThickness: 10, SafetyStatus: "Unsafe"},
		{Location: "NAC", AvgIceThickness: 31, SafetyStatus: "Safe"},
	})
	if !errors.Is(err, ErrUnknownBinding) {
		t.Fatalf("expected ErrUnknownBinding, got %v", err)
	}

	el, _ := r.Page().Element("ice-nac")
	if el.Text != "31.0" {
		t.Errorf("expected later card to render, got %q", el.Text)
	}
	if _, ok := r.Page().Element("ice-somewhereelse"); ok {
		t.Error("unknown location must not create bindings")
	}
}

func TestRenderOverallStatusAndLastUpdate(t *testing.T) {
	r := newTestRenderer()

	if err := r.RenderOverallStatus("Caution"); err != nil {
		t.Fatal(err)
	}
	el, _ := r.Page().Element("overallStatus")
	if el.Text != "Caution" || el.Class != "caution" {
		t.Errorf("unexpected overall badge %+v", el)
	}

	now := time.Date(2025, 2, 1, 9, 5, 7, 0, time.UTC)
	if err := r.RenderLastUpdate(now); err != nil {
		t.Fatal(err)
	}
	el, _ = r.Page().Element("lastUpdate")
	if el.Text != "09:05:07" {
		t.Errorf("expected 09:05:07, got %q", el.Text)
	}
}

func TestNotice(t *testing.T) {
	r := newTestRenderer()
	before := r.Page().Snapshot().Revision

	now := time.Now()
	r.ShowError("Failed", now)
	n := r.Page().Notice()
	if n == nil || n.Message != "Failed" || !n.At.Equal(now) {
		t.Fatalf("unexpected notice %+v", n)
	}

	r.ClearError()
	if r.Page().Notice() != nil {
		t.Error("expected notice to be cleared")
	}
	if after := r.Page().Snapshot().Revision; after != before+2 {
		t.Errorf("expected revision %d, got %d", before+2, after)
	}
}
