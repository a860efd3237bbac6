package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
)

// mockRoundTripper serves requests from an in-process handler
type mockRoundTripper struct {
	handler http.Handler
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

func newTestAPIClient(handler http.Handler) *APIClient {
	c := NewAPIClient("http://api.test/", false, zerolog.Nop())
	c.HTTPClient = &http.Client{Transport: &mockRoundTripper{handler: handler}}
	return c
}

const predictBody = `{
	"AQI_Predicted": 132.4,
	"status": "Unhealthy for Sensitive Groups",
	"pollutants": {"pm2_5": 60, "pm10": 110, "no2": 30, "so2": 8, "co": 1.1, "o3": 70, "nh3": 0},
	"location": "Delhi, India",
	"timestamp": "2026-10-15T10:00",
	"data_source": "live"
}`

func TestFetchLive(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %s, want /predict", r.URL.Path)
		}
		w.Write([]byte(predictBody))
	})

	p, sample := newTestAPIClient(handler).FetchLive(context.Background())

	if sample {
		t.Fatal("expected live data, got sample")
	}
	if p.AQI != 132.4 || p.Status != models.StatusUnhealthySensitive {
		t.Errorf("prediction = %+v", p)
	}
	if p.Pollutants.PM10 != 110 || p.Timestamp != "2026-10-15T10:00" {
		t.Errorf("prediction = %+v", p)
	}
}

func TestFetchLive_FallsBackToSample(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail": "Model not loaded"}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"AQI_Predicted": `))
			},
		},
		{
			name: "unknown status label",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"AQI_Predicted": 10, "status": "Fine"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, sample := newTestAPIClient(tt.handler).FetchLive(context.Background())
			if !sample {
				t.Error("expected sample data")
			}
			if p != SamplePrediction() {
				t.Errorf("prediction = %+v, want sample", p)
			}
		})
	}
}

func TestFetchLive_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewAPIClient(url, false, zerolog.Nop())
	p, sample := c.FetchLive(context.Background())
	if !sample || p.AQI != 45.5 {
		t.Errorf("got %+v (sample=%v), want sample", p, sample)
	}
}

func TestFetchLive_UseSampleData(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("API should not be called when sample data is requested")
	})
	c := newTestAPIClient(handler)
	c.UseSampleData = true

	p, sample := c.FetchLive(context.Background())
	if !sample {
		t.Error("expected sample data")
	}
	if p.Timestamp != "Sample Data" || p.Location != "Delhi, India" || p.Status != models.StatusGood {
		t.Errorf("sample = %+v", p)
	}
	if p.Pollutants != models.FallbackReading() {
		t.Errorf("sample pollutants = %+v", p.Pollutants)
	}
}
