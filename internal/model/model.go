package model

import "time"

// Orientation is a compass orientation of a building element or PV plane.
type Orientation string

const (
	North     Orientation = "N"
	NorthEast Orientation = "NE"
	East      Orientation = "E"
	SouthEast Orientation = "SE"
	South     Orientation = "S"
	SouthWest Orientation = "SW"
	West      Orientation = "W"
	NorthWest Orientation = "NW"
)

// Orientations lists all valid orientations.
var Orientations = []Orientation{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// orientationShare splits global horizontal radiation onto a vertical plane
// facing the given direction. South receives the full value, north a fraction.
var orientationShare = map[Orientation]float64{
	South:     1.0,
	SouthEast: 0.85,
	SouthWest: 0.85,
	East:      0.7,
	West:      0.7,
	NorthEast: 0.45,
	NorthWest: 0.45,
	North:     0.3,
}

// Azimuth returns the compass azimuth in degrees (0=N, 90=E, 180=S, 270=W).
func (o Orientation) Azimuth() float64 {
	switch o {
	case North:
		return 0
	case NorthEast:
		return 45
	case East:
		return 90
	case SouthEast:
		return 135
	case South:
		return 180
	case SouthWest:
		return 225
	case West:
		return 270
	case NorthWest:
		return 315
	}
	return 180
}

// Valid reports whether o is one of the eight known orientations.
func (o Orientation) Valid() bool {
	_, ok := orientationShare[o]
	return ok
}

// WeatherRecord is a single immutable weather observation.
type WeatherRecord struct {
	Timestamp       time.Time `csv:"timestamp" json:"timestamp"`
	TemperatureC    float64   `csv:"temperature" json:"temperature"`
	GlobalRadiation float64   `csv:"solar_radiation" json:"solar_radiation"` // W/m² horizontal
	WindSpeedMS     float64   `csv:"wind_speed" json:"wind_speed"`
	HumidityPct     float64   `csv:"humidity" json:"humidity"`
	CloudCoverPct   float64   `csv:"cloud_cover" json:"cloud_cover"`
	Precipitation   float64   `csv:"precipitation" json:"precipitation"` // mm/h
}

// IrradianceOn returns the irradiance on a plane with the given orientation,
// derived from the global horizontal radiation by a fixed directional split.
func (w WeatherRecord) IrradianceOn(o Orientation) float64 {
	share, ok := orientationShare[o]
	if !ok {
		return 0
	}
	return w.GlobalRadiation * share
}

// Location is a geographic position.
type Location struct {
	Latitude  float64
	Longitude float64
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies inside the range (inclusive bounds).
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && !t.After(tr.End)
}
