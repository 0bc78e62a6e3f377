package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lat") != "6.25" {
			t.Errorf("lat = %q, want 6.25", q.Get("lat"))
		}
		if q.Get("lon") != "-75.59" {
			t.Errorf("lon = %q, want -75.59", q.Get("lon"))
		}
		if q.Get("appid") != "test-key" {
			t.Errorf("appid = %q, want test-key", q.Get("appid"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"coord":{"lon":-75.59,"lat":6.25},
			"list":[{"main":{"aqi":2},"components":{"co":240.33,"no2":13.71},"dt":1743880243}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	payload, err := client.FetchCurrent(context.Background(), 6.25, -75.59)
	if err != nil {
		t.Fatalf("FetchCurrent failed: %v", err)
	}

	if len(payload.List) != 1 {
		t.Fatalf("list entries = %d, want 1", len(payload.List))
	}
	entry := payload.List[0]
	if entry.Dt != 1743880243 {
		t.Errorf("dt = %d, want 1743880243", entry.Dt)
	}
	if entry.Main.AQI != 2 {
		t.Errorf("aqi = %d, want 2", entry.Main.AQI)
	}
	if entry.Components["co"] != 240.33 {
		t.Errorf("co = %v, want 240.33", entry.Components["co"])
	}
	if payload.Coord.Lat != 6.25 || payload.Coord.Lon != -75.59 {
		t.Errorf("coord = %+v, want lat=6.25 lon=-75.59", payload.Coord)
	}
}

func TestFetchCurrentUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	if _, err := client.FetchCurrent(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestFetchCurrentMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	if _, err := client.FetchCurrent(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error on malformed body")
	}
}
