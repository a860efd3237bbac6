package models

import (
	"encoding/json"
	"fmt"
)

// Status is an AQI severity band, ordered from least to most severe.
type Status int

const (
	StatusGood Status = iota
	StatusModerate
	StatusUnhealthySensitive
	StatusUnhealthy
	StatusVeryUnhealthy
	StatusHazardous
)

// Classify maps an AQI score to its band. Upper bounds are inclusive, so a
// score sitting exactly on a threshold belongs to the lower band.
func Classify(aqi float64) Status {
	switch {
	case aqi <= 50:
		return StatusGood
	case aqi <= 100:
		return StatusModerate
	case aqi <= 150:
		return StatusUnhealthySensitive
	case aqi <= 200:
		return StatusUnhealthy
	case aqi <= 300:
		return StatusVeryUnhealthy
	default:
		return StatusHazardous
	}
}

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "Good"
	case StatusModerate:
		return "Moderate"
	case StatusUnhealthySensitive:
		return "Unhealthy for Sensitive Groups"
	case StatusUnhealthy:
		return "Unhealthy"
	case StatusVeryUnhealthy:
		return "Very Unhealthy"
	case StatusHazardous:
		return "Hazardous"
	default:
		return "Unknown"
	}
}

// Emoji returns the face shown next to the status on the dashboard
func (s Status) Emoji() string {
	switch s {
	case StatusGood:
		return "😊"
	case StatusModerate:
		return "😐"
	case StatusUnhealthySensitive:
		return "😷"
	case StatusUnhealthy:
		return "😞"
	case StatusVeryUnhealthy:
		return "😨"
	default:
		return "☠️"
	}
}

// Color returns the CSS color used for the status.
func (s Status) Color() string {
	switch s {
	case StatusGood:
		return "green"
	case StatusModerate:
		return "orange"
	case StatusUnhealthySensitive, StatusUnhealthy:
		return "red"
	case StatusVeryUnhealthy:
		return "purple"
	default:
		return "maroon"
	}
}

// ParseStatus returns the status with the given label.
func ParseStatus(label string) (Status, bool) {
	for s := StatusGood; s <= StatusHazardous; s++ {
		if s.String() == label {
			return s, true
		}
	}
	return StatusGood, false
}

// MarshalJSON encodes the status as its label
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status label. Unknown labels are rejected.
func (s *Status) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, ok := ParseStatus(label)
	if !ok {
		return fmt.Errorf("unknown AQI status %q", label)
	}
	*s = parsed
	return nil
}
