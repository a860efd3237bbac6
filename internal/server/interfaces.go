package server

import (
	"context"

	"github.com/afroash/aqi-monitor/internal/models"
)

// PredictionService defines what the HTTP layer needs from the prediction
// pipeline. prediction.Service implements this interface.
type PredictionService interface {
	// PredictLive predicts the AQI from the latest provider reading
	PredictLive(ctx context.Context) (*models.LivePrediction, error)

	// PredictCustom predicts the AQI for caller-supplied concentrations
	PredictCustom(reading models.PollutantReading) (*models.CustomPrediction, error)

	// ModelLoaded reports whether a model is available
	ModelLoaded() bool
}
