package models

import (
	"time"
)

// SourceType classifies a climate data source
type SourceType string

const (
	SourceTypeSatellite      SourceType = "satellite"
	SourceTypeWeatherStation SourceType = "weather_station"
	SourceTypeSensor         SourceType = "sensor"
	SourceTypeOceanBuoy      SourceType = "ocean_buoy"
	SourceTypeAirQuality     SourceType = "air_quality"
)

// ValidSourceTypes defines allowed source types and their labels
var ValidSourceTypes = map[SourceType]string{
	SourceTypeSatellite:      "Satellite Imagery",
	SourceTypeWeatherStation: "Weather Station",
	SourceTypeSensor:         "Environmental Sensor",
	SourceTypeOceanBuoy:      "Ocean Buoy",
	SourceTypeAirQuality:     "Air Quality Monitor",
}

// DataSource is an instrument or platform producing climate readings
type DataSource struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	SourceType       SourceType `json:"source_type" db:"source_type"`
	Latitude         float64    `json:"latitude" db:"latitude"`
	Longitude        float64    `json:"longitude" db:"longitude"`
	Altitude         *float64   `json:"altitude,omitempty" db:"altitude"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	InstallationDate time.Time  `json:"installation_date" db:"installation_date"`
	LastMaintenance  *time.Time `json:"last_maintenance,omitempty" db:"last_maintenance"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// DataSourceRequest is the input for registering a data source
type DataSourceRequest struct {
	Name             string   `json:"name"`
	SourceType       string   `json:"source_type"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Altitude         *float64 `json:"altitude,omitempty"`
	InstallationDate string   `json:"installation_date"`
}

// SourceStats summarizes data sources for the admin dashboard
type SourceStats struct {
	TotalSources    int `json:"total_sources"`
	ActiveSources   int `json:"active_sources"`
	SatelliteCount  int `json:"satellite_sources"`
	WeatherStations int `json:"weather_stations"`
}

// SourceTypeCount is one bucket of the source distribution
type SourceTypeCount struct {
	SourceType SourceType `json:"source_type" db:"source_type"`
	Count      int        `json:"count" db:"count"`
}
