package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", &http.Client{Timeout: 2 * time.Second})
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
		count   int
		wantErr error
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{"success":true,"data":[
				{"location":"Dow's Lake","avg_ice_thickness":32.15,"avg_surface_temperature":-4.2,"max_snow_accumulation":3.0,"safety_status":"Safe"},
				{"location":"NAC","avg_ice_thickness":24.0,"avg_surface_temperature":-0.5,"max_snow_accumulation":1.25,"safety_status":"Unsafe"}]}`,
			outcome: Success,
			count:   2,
		},
		{
			name:    "empty list is still success",
			status:  http.StatusOK,
			body:    `{"success":true,"data":[]}`,
			outcome: Success,
		},
		{
			name:    "success false",
			status:  http.StatusOK,
			body:    `{"success":false,"error":"warming up"}`,
			outcome: SoftFailure,
			wantErr: ErrNotReady,
		},
		{
			name:    "missing data",
			status:  http.StatusOK,
			body:    `{"success":true}`,
			outcome: SoftFailure,
			wantErr: ErrUnusableResponse,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `boom`,
			outcome: SoftFailure,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>proxy error</html>`,
			outcome: SoftFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/latest" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			res := c.Latest(context.Background())
			if res.Outcome != tt.outcome {
				t.Fatalf("expected outcome %v, got %v (err %v)", tt.outcome, res.Outcome, res.Err)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, res.Err)
			}
			if res.OK() && len(res.Value) != tt.count {
				t.Errorf("expected %d snapshots, got %d", tt.count, len(res.Value))
			}
		})
	}
}

func TestLatestDecodesFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[{"location_id":"fifthave","location":"Fifth Avenue","avg_ice_thickness":28.04,"avg_surface_temperature":-2.96,"max_snow_accumulation":4.5,"safety_status":"Caution"}]}`)
	})

	res := c.Latest(context.Background())
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	s := res.Value[0]
	if s.LocationID != "fifthave" || s.Location != "Fifth Avenue" || s.SafetyStatus != "Caution" {
		t.Errorf("unexpected snapshot %+v", s)
	}
	if s.AvgIceThickness != 28.04 || s.AvgSurfaceTemperature != -2.96 || s.MaxSnowAccumulation != 4.5 {
		t.Errorf("unexpected measurements %+v", s)
	}
}

func TestTransportFailureIsHard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, &http.Client{Timeout: time.Second})

	if res := c.Latest(context.Background()); res.Outcome != HardFailure {
		t.Errorf("latest: expected hard failure, got %v", res.Outcome)
	}
	if res := c.Status(context.Background()); res.Outcome != HardFailure {
		t.Errorf("status: expected hard failure, got %v", res.Outcome)
	}
	if res := c.History(context.Background(), "nac", 12); res.Outcome != HardFailure {
		t.Errorf("history: expected hard failure, got %v", res.Outcome)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		outcome Outcome
		value   string
	}{
		{"success", `{"success":true,"overallStatus":"Caution"}`, Success, "Caution"},
		{"success false", `{"success":false}`, SoftFailure, ""},
		{"missing status", `{"success":true}`, SoftFailure, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/status" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprint(w, tt.body)
			})

			res := c.Status(context.Background())
			if res.Outcome != tt.outcome {
				t.Fatalf("expected %v, got %v (err %v)", tt.outcome, res.Outcome, res.Err)
			}
			if string(res.Value) != tt.value {
				t.Errorf("expected status %q, got %q", tt.value, res.Value)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history/dowslake" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "12" {
			t.Errorf("expected limit=12, got %q", got)
		}
		fmt.Fprint(w, `{"data":[
			{"event_time":"2025-02-01T10:00:00Z","avg_ice_thickness":30.1,"avg_surface_temperature":-3.0},
			{"event_time":"2025-02-01T10:05:00Z","avg_ice_thickness":30.4,"avg_surface_temperature":-3.2}]}`)
	})

	res := c.History(context.Background(), "dowslake", 12)
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if len(res.Value) != 2 {
		t.Fatalf("expected 2 points, got %d", len(res.Value))
	}
	if !res.Value[0].EventTime.Before(res.Value[1].EventTime) {
		t.Error("expected service order to be preserved")
	}
	if res.Value[1].AvgIceThickness != 30.4 {
		t.Errorf("unexpected ice thickness %v", res.Value[1].AvgIceThickness)
	}
}

func TestHistorySoftFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing data", `{}`},
		{"explicit success false", `{"success":false,"data":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			if res := c.History(context.Background(), "nac", 12); res.Outcome != SoftFailure {
				t.Errorf("expected soft failure, got %v", res.Outcome)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	if Success.String() != "success" || SoftFailure.String() != "soft-failure" || HardFailure.String() != "hard-failure" {
		t.Error("unexpected outcome names")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "boom", 10, "boom"},
		{"ascii", "abcdef", 3, "abc..."},
		{"cut inside rune", "ééé", 3, "é..."},
		{"cut on boundary", "ééé", 4, "éé..."},
		{"first rune too long", "€uro", 2, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, expected %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestErrorBodyStaysValidUTF8(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		// byte 200 falls inside an "é"
		fmt.Fprint(w, strings.Repeat("x", 13)+strings.Repeat("glace épaisse ", 40))
	})

	res := c.Latest(context.Background())
	if res.Outcome != SoftFailure {
		t.Fatalf("expected soft failure, got %v", res.Outcome)
	}
	if msg := res.Err.Error(); !utf8.ValidString(msg) {
		t.Errorf("error message is not valid UTF-8: %q", msg)
	}
}
