package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %q, want /reverse", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "likkle-test" {
			t.Errorf("user agent = %q", ua)
		}
		q := r.URL.Query()
		if q.Get("lat") == "" || q.Get("lon") == "" {
			t.Error("missing lat/lon query params")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name":"bul. Vitosha 1, Sofia, Bulgaria"}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "likkle-test")
	address, err := client.ReverseGeocode(context.Background(), 42.6977, 23.3219)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "bul. Vitosha 1, Sofia, Bulgaria" {
		t.Errorf("address = %q", address)
	}
}

func TestReverseGeocodeUnresolvable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "likkle-test")
	address, err := client.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "" {
		t.Errorf("address = %q, want empty", address)
	}
}

func TestReverseGeocodeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "likkle-test")
	if _, err := client.ReverseGeocode(context.Background(), 42.6977, 23.3219); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
