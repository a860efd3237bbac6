package models

// FeatureCount is the number of inputs the AQI model was trained on.
const FeatureCount = 8

// FeatureNames is the column order the model was trained with.
var FeatureNames = [FeatureCount]string{"PM2.5", "PM10", "NO", "NO2", "NH3", "CO", "SO2", "O3"}

// FeatureVector is the fixed-order numeric input consumed by the model.
type FeatureVector [FeatureCount]float64

// NewFeatureVector maps a reading onto the model's training order.
// NO has no data source and is always zero. Every prediction path must build
// its vector here; a permuted vector still yields a plausible-looking AQI.
func NewFeatureVector(r PollutantReading) FeatureVector {
	return FeatureVector{
		r.PM25,
		r.PM10,
		0.0, // NO
		r.NO2,
		r.NH3,
		r.CO,
		r.SO2,
		r.O3,
	}
}

// Slice returns the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	return v[:]
}
