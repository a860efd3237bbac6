package models

import (
	"fmt"
	"math"
)

// PollutantReading is a snapshot of pollutant concentrations at one point in time.
// Particulates and gases are in µg/m³, except CO which the provider reports in mg/m³.
type PollutantReading struct {
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
	O3   float64 `json:"o3"`
	NH3  float64 `json:"nh3"`
}

// FallbackReading returns the fixed reading served when the live provider
// cannot be reached.
func FallbackReading() PollutantReading {
	return PollutantReading{
		PM25: 25.0,
		PM10: 45.0,
		NO2:  12.0,
		SO2:  5.0,
		CO:   0.5,
		O3:   45.0,
		NH3:  0.0,
	}
}

// Validate checks that every concentration is a finite, non-negative number.
func (r PollutantReading) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"pm2_5", r.PM25},
		{"pm10", r.PM10},
		{"no2", r.NO2},
		{"so2", r.SO2},
		{"co", r.CO},
		{"o3", r.O3},
		{"nh3", r.NH3},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be a finite number", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", f.name, f.value)
		}
	}
	return nil
}

// String returns the reading in a compact, log-friendly form
func (r PollutantReading) String() string {
	return fmt.Sprintf("PM2.5: %.1f, PM10: %.1f, NO2: %.1f, SO2: %.1f, CO: %.2f, O3: %.1f, NH3: %.1f",
		r.PM25, r.PM10, r.NO2, r.SO2, r.CO, r.O3, r.NH3)
}
