package models

import "fmt"

// Location is the coordinate the live prediction path queries
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DefaultLocation is used when no location is configured.
func DefaultLocation() Location {
	return Location{
		Name:      "Delhi, India",
		Latitude:  28.6139,
		Longitude: 77.2090,
	}
}

// IsValid reports whether the coordinates are within WGS84 bounds.
func (l Location) IsValid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f)", l.Name, l.Latitude, l.Longitude)
}
