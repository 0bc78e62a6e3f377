package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkraev/aqwatch/internal/models"
)

func TestHealthz(t *testing.T) {
	srv := New(":0")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestLatestBeforeAnySample(t *testing.T) {
	srv := New(":0")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/latest", nil)
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestLatestServesStoredSample(t *testing.T) {
	srv := New(":0")
	srv.SetLatest(models.LiveSample{
		Main:          models.AirQualityIndex{AQI: 2},
		Components:    map[string]float64{"co": 240.33},
		Dt:            1743880243,
		TimestampUnix: 1743880243,
		Timestamp:     "2025-04-05 19:10:43",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/latest", nil)
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var sample models.LiveSample
	if err := json.Unmarshal(w.Body.Bytes(), &sample); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if sample.TimestampUnix != 1743880243 {
		t.Errorf("timestamp_unix = %d, want 1743880243", sample.TimestampUnix)
	}
	if sample.Components["co"] != 240.33 {
		t.Errorf("co = %v, want 240.33", sample.Components["co"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := New(":0")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
