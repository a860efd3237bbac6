package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
	"github.com/afroash/aqi-monitor/internal/prediction"
	"github.com/afroash/aqi-monitor/internal/regressor"
)

const customExample = "/predict/custom?pm25=10&pm10=20&no2=15&so2=5&co=0.5&o3=40&nh3=0"

// APIHandler serves the prediction API
type APIHandler struct {
	service   PredictionService
	modelInfo *regressor.Info
	logger    zerolog.Logger
}

// NewAPIHandler creates a new API handler. modelInfo is nil when no model
// was loaded.
func NewAPIHandler(service PredictionService, modelInfo *regressor.Info, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		service:   service,
		modelInfo: modelInfo,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Register adds the API routes to mux
func (api *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", api.HandleRoot)
	mux.HandleFunc("GET /health", api.HandleHealth)
	mux.HandleFunc("GET /predict", api.HandlePredict)
	mux.HandleFunc("GET /predict/custom", api.HandlePredictCustom)
}

// RootResponse lists the available endpoints
type RootResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse reports whether predictions can be served
type HealthResponse struct {
	Status      string          `json:"status"`
	ModelLoaded bool            `json:"model_loaded"`
	Model       *regressor.Info `json:"model,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HandleRoot returns the discovery payload
func (api *APIHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Air Quality Prediction API is Running!",
		Endpoints: map[string]string{
			"health":         "/health",
			"predict":        "/predict",
			"predict_custom": customExample,
		},
	})
}

// HandleHealth reports model availability
func (api *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "model_not_loaded"}
	if api.service.ModelLoaded() {
		resp.Status = "healthy"
		resp.ModelLoaded = true
		resp.Model = api.modelInfo
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePredict returns the AQI predicted from live provider data
func (api *APIHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	result, err := api.service.PredictLive(r.Context())
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandlePredictCustom returns the AQI predicted for the query parameters.
// All pollutants except nh3 are required.
func (api *APIHandler) HandlePredictCustom(w http.ResponseWriter, r *http.Request) {
	reading, err := parseReading(r.URL.Query())
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}

	result, err := api.service.PredictCustom(reading)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeServiceError maps prediction errors onto HTTP status codes
func (api *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		detail string
		verr   *prediction.ValidationError
		perr   *prediction.PredictionError
	)

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		detail = verr.Error()
	case errors.Is(err, prediction.ErrModelUnavailable):
		detail = "Model not loaded"
	case errors.As(err, &perr):
		detail = "Prediction error: " + perr.Err.Error()
	default:
		detail = "Prediction error: " + err.Error()
	}

	api.logger.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", RequestIDFromContext(r.Context())).
		Int("status", status).
		Msg("Request failed")
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// parseReading builds a reading from custom prediction query parameters
func parseReading(q url.Values) (models.PollutantReading, error) {
	var (
		r   models.PollutantReading
		err error
	)
	fields := []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"pm25", &r.PM25, true},
		{"pm10", &r.PM10, true},
		{"no2", &r.NO2, true},
		{"so2", &r.SO2, true},
		{"co", &r.CO, true},
		{"o3", &r.O3, true},
		{"nh3", &r.NH3, false},
	}
	for _, f := range fields {
		if *f.dst, err = parseParam(q, f.name, f.required); err != nil {
			return models.PollutantReading{}, err
		}
	}
	return r, nil
}

func parseParam(q url.Values, name string, required bool) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		if required {
			return 0, &prediction.ValidationError{Field: name, Reason: "field required"}
		}
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &prediction.ValidationError{Field: name, Reason: "value is not a valid number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &prediction.ValidationError{Field: name, Reason: "value must be finite"}
	}
	if v < 0 {
		return 0, &prediction.ValidationError{Field: name, Reason: "value must be non-negative"}
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
