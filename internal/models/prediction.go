package models

import (
	"math"
	"time"
)

// DataSource tells where the pollutants behind a live prediction came from
type DataSource string

const (
	DataSourceLive     DataSource = "live"
	DataSourceFallback DataSource = "fallback"
	DataSourceSample   DataSource = "sample"
)

// LivePrediction is the payload of the live prediction endpoint.
type LivePrediction struct {
	AQI        float64          `json:"AQI_Predicted"`
	Status     Status           `json:"status"`
	Pollutants PollutantReading `json:"pollutants"`
	Location   string           `json:"location"`
	Timestamp  string           `json:"timestamp"`
	DataSource DataSource       `json:"data_source,omitempty"`
}

// CustomPrediction is the payload of the custom prediction endpoint.
type CustomPrediction struct {
	AQI    float64         `json:"AQI_Predicted"`
	Status Status          `json:"status"`
	Input  InputParameters `json:"input_parameters"`
}

// InputParameters echoes the caller-supplied concentrations using the
// upper-case pollutant names.
type InputParameters struct {
	PM25 float64 `json:"PM2.5"`
	PM10 float64 `json:"PM10"`
	NO2  float64 `json:"NO2"`
	SO2  float64 `json:"SO2"`
	CO   float64 `json:"CO"`
	O3   float64 `json:"O3"`
	NH3  float64 `json:"NH3"`
}

// NewInputParameters copies a reading into its echo form
func NewInputParameters(r PollutantReading) InputParameters {
	return InputParameters{
		PM25: r.PM25,
		PM10: r.PM10,
		NO2:  r.NO2,
		SO2:  r.SO2,
		CO:   r.CO,
		O3:   r.O3,
		NH3:  r.NH3,
	}
}

// RoundAQI rounds a model score to two decimal places for display.
func RoundAQI(aqi float64) float64 {
	return math.Round(aqi*100) / 100
}

// HistoryEntry is one point on the dashboard's AQI trend.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	AQI       float64   `json:"aqi"`
}
