package prediction

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
	"github.com/afroash/aqi-monitor/internal/source"
)

// Source supplies live pollutant readings. Implementations must not fail;
// provider problems surface as a fallback observation.
type Source interface {
	Fetch(ctx context.Context, loc models.Location) source.Observation
}

// Predictor turns a feature vector into an AQI score.
// regressor.Model implements this interface.
type Predictor interface {
	Predict(x models.FeatureVector) (float64, error)
}

// Service runs the prediction pipeline for both live and custom readings.
type Service struct {
	source    Source
	predictor Predictor
	location  models.Location
	logger    zerolog.Logger
}

// NewService creates a prediction service. predictor may be nil when the
// model failed to load; every prediction then returns ErrModelUnavailable.
func NewService(src Source, predictor Predictor, loc models.Location, logger zerolog.Logger) *Service {
	return &Service{
		source:    src,
		predictor: predictor,
		location:  loc,
		logger:    logger.With().Str("component", "prediction").Logger(),
	}
}

// ModelLoaded reports whether predictions can be served.
func (s *Service) ModelLoaded() bool {
	return s.predictor != nil
}

// Location returns the location used for live predictions
func (s *Service) Location() models.Location {
	return s.location
}

// PredictLive fetches the current reading for the configured location and
// predicts its AQI.
func (s *Service) PredictLive(ctx context.Context) (*models.LivePrediction, error) {
	if s.predictor == nil {
		return nil, ErrModelUnavailable
	}

	obs := s.source.Fetch(ctx, s.location)

	aqi, status, err := s.score(obs.Reading)
	if err != nil {
		return nil, err
	}

	result := &models.LivePrediction{
		AQI:        aqi,
		Status:     status,
		Pollutants: obs.Reading,
		Location:   s.location.Name,
		Timestamp:  obs.ObservedAt,
		DataSource: models.DataSourceLive,
	}
	if obs.Fallback {
		result.Timestamp = "Fallback data"
		result.DataSource = models.DataSourceFallback
	} else if result.Timestamp == "" {
		result.Timestamp = "Live data"
	}

	s.logger.Info().
		Float64("aqi", aqi).
		Str("status", status.String()).
		Str("data_source", string(result.DataSource)).
		Msg("Live prediction served")
	return result, nil
}

// PredictCustom predicts the AQI for caller-supplied concentrations.
func (s *Service) PredictCustom(reading models.PollutantReading) (*models.CustomPrediction, error) {
	if s.predictor == nil {
		return nil, ErrModelUnavailable
	}
	if err := reading.Validate(); err != nil {
		return nil, &ValidationError{Field: "pollutants", Reason: err.Error()}
	}

	aqi, status, err := s.score(reading)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Float64("aqi", aqi).
		Str("status", status.String()).
		Msg("Custom prediction served")

	return &models.CustomPrediction{
		AQI:    aqi,
		Status: status,
		Input:  models.NewInputParameters(reading),
	}, nil
}

// score runs the model on a reading. Status comes from the unrounded score;
// only the displayed value is rounded.
func (s *Service) score(reading models.PollutantReading) (aqi float64, status models.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Model panicked during prediction")
			err = &PredictionError{Err: fmt.Errorf("%v", r)}
		}
	}()

	vector := models.NewFeatureVector(reading)
	raw, err := s.predictor.Predict(vector)
	if err != nil {
		s.logger.Error().Err(err).Msg("Model prediction failed")
		return 0, 0, &PredictionError{Err: err}
	}

	return models.RoundAQI(raw), models.Classify(raw), nil
}
