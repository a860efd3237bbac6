package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
)

// SamplePrediction is shown when the API cannot be reached or sample data
// was requested.
func SamplePrediction() models.LivePrediction {
	return models.LivePrediction{
		AQI:        45.5,
		Status:     models.StatusGood,
		Pollutants: models.FallbackReading(),
		Location:   models.DefaultLocation().Name,
		Timestamp:  "Sample Data",
		DataSource: models.DataSourceSample,
	}
}

// APIClient fetches live predictions from the prediction API
type APIClient struct {
	BaseURL       string
	UseSampleData bool
	HTTPClient    *http.Client
	logger        zerolog.Logger
}

// NewAPIClient creates a client for the API at baseURL
func NewAPIClient(baseURL string, useSampleData bool, logger zerolog.Logger) *APIClient {
	return &APIClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		UseSampleData: useSampleData,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "api_client").Logger(),
	}
}

// FetchLive returns the current live prediction. On any failure the sample
// prediction is returned and sample is true.
func (c *APIClient) FetchLive(ctx context.Context) (prediction models.LivePrediction, sample bool) {
	if c.UseSampleData {
		return SamplePrediction(), true
	}

	p, err := c.fetchPredict(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("api_url", c.BaseURL).Msg("Failed to fetch prediction, showing sample data")
		return SamplePrediction(), true
	}
	return p, false
}

func (c *APIClient) fetchPredict(ctx context.Context) (models.LivePrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/predict", nil)
	if err != nil {
		return models.LivePrediction{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.LivePrediction{}, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.LivePrediction{}, fmt.Errorf("API error: %d", resp.StatusCode)
	}

	var p models.LivePrediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.LivePrediction{}, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return p, nil
}
