package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type sample struct {
	LocationKey string  `json:"location_key"`
	Ice         float64 `json:"ice"`
}

func TestWriteResponse(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
	}{
		{"default json", "/api/dashboard", "application/json"},
		{"unknown format falls back to json", "/api/dashboard?format=xml", "application/json"},
		{"msgpack", "/api/dashboard?format=msgpack", "application/x-msgpack"},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)

			err := f.WriteResponse(rec, req, sample{LocationKey: "nac", Ice: 31.5}, map[string]string{"Cache-Control": "no-cache"})
			if err != nil {
				t.Fatal(err)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("expected %s, got %s", tt.contentType, ct)
			}
			if rec.Header().Get("Cache-Control") != "no-cache" || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Errorf("missing headers: %v", rec.Header())
			}

			var got map[string]any
			if tt.contentType == "application/x-msgpack" {
				err = msgpack.Unmarshal(rec.Body.Bytes(), &got)
			} else {
				err = json.Unmarshal(rec.Body.Bytes(), &got)
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got["location_key"] != "nac" {
				t.Errorf("expected json tag names, got %v", got)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)

	if err := NewFormatter().WriteError(rec, req, http.StatusBadRequest, "invalid limit"); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Error != "invalid limit" {
		t.Errorf("unexpected body %+v", body)
	}
}
