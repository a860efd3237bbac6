package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
)

// DefaultBaseURL is the Open-Meteo air quality endpoint.
const DefaultBaseURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

// hourlyVariables are requested from the provider. NH3 is not offered.
const hourlyVariables = "pm10,pm2_5,nitrogen_dioxide,sulphur_dioxide,carbon_monoxide,ozone"

// Observation is what a fetch produced. Fallback is set when the provider
// could not be used and the reading is FallbackReading.
type Observation struct {
	Reading    models.PollutantReading
	Fallback   bool
	ObservedAt string
}

// Config holds settings for the Open-Meteo client
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Timezone string
}

// Client fetches live pollutant concentrations from Open-Meteo
type Client struct {
	BaseURL    string
	Timezone   string
	HTTPClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "auto"
	}

	return &Client{
		BaseURL:  cfg.BaseURL,
		Timezone: cfg.Timezone,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "source").Logger(),
	}
}

// AirQualityResponse represents the hourly section of an Open-Meteo response.
// Series are padded with nulls for hours the model has not produced yet.
type AirQualityResponse struct {
	Hourly *struct {
		Time            []string   `json:"time"`
		PM10            []*float64 `json:"pm10"`
		PM25            []*float64 `json:"pm2_5"`
		NitrogenDioxide []*float64 `json:"nitrogen_dioxide"`
		SulphurDioxide  []*float64 `json:"sulphur_dioxide"`
		CarbonMonoxide  []*float64 `json:"carbon_monoxide"`
		Ozone           []*float64 `json:"ozone"`
	} `json:"hourly"`
}

// Fetch returns the latest reading for a location. It never fails: any
// provider problem is logged and the fallback reading is returned instead.
func (c *Client) Fetch(ctx context.Context, loc models.Location) Observation {
	obs, err := c.fetchLatest(ctx, loc)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("location", loc.Name).
			Msg("Live air quality unavailable, using fallback reading")
		return Observation{Reading: models.FallbackReading(), Fallback: true}
	}

	c.logger.Debug().
		Str("location", loc.Name).
		Str("observed_at", obs.ObservedAt).
		Str("reading", obs.Reading.String()).
		Msg("Fetched live data")
	return obs
}

func (c *Client) fetchLatest(ctx context.Context, loc models.Location) (Observation, error) {
	data, err := c.get(ctx, c.requestURL(loc))
	if err != nil {
		return Observation{}, err
	}

	var resp AirQualityResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Observation{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Hourly == nil {
		return Observation{}, errors.New("response has no hourly section")
	}

	h := resp.Hourly
	pm25, idx := latest(h.PM25)
	obs := Observation{
		Reading: models.PollutantReading{
			PM25: pm25,
			PM10: first(latest(h.PM10)),
			NO2:  first(latest(h.NitrogenDioxide)),
			SO2:  first(latest(h.SulphurDioxide)),
			CO:   first(latest(h.CarbonMonoxide)),
			O3:   first(latest(h.Ozone)),
			NH3:  0.0,
		},
	}
	if idx >= 0 && idx < len(h.Time) {
		obs.ObservedAt = h.Time[idx]
	}
	return obs, nil
}

func (c *Client) requestURL(loc models.Location) string {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	params.Set("hourly", hourlyVariables)
	params.Set("timezone", c.Timezone)
	return c.BaseURL + "?" + params.Encode()
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("open-meteo API error: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// latest returns the last non-null value of a series and its index.
// An empty or all-null series yields 0 and -1.
func latest(series []*float64) (float64, int) {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			return *series[i], i
		}
	}
	return 0, -1
}

func first(v float64, _ int) float64 {
	return v
}
