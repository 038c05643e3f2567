package models

import (
	"time"
)

// DataType is the measured quantity of a climate reading
type DataType string

const (
	DataTypeTemperature   DataType = "temperature"
	DataTypeHumidity      DataType = "humidity"
	DataTypePressure      DataType = "pressure"
	DataTypeWindSpeed     DataType = "wind_speed"
	DataTypeWindDirection DataType = "wind_direction"
	DataTypePrecipitation DataType = "precipitation"
	DataTypeCO2Level      DataType = "co2_level"
	DataTypeOzoneLevel    DataType = "ozone_level"
	DataTypeSeaLevel      DataType = "sea_level"
	DataTypeIceCoverage   DataType = "ice_coverage"
)

// ValidDataTypes defines allowed data types and their labels
var ValidDataTypes = map[DataType]string{
	DataTypeTemperature:   "Temperature",
	DataTypeHumidity:      "Humidity",
	DataTypePressure:      "Atmospheric Pressure",
	DataTypeWindSpeed:     "Wind Speed",
	DataTypeWindDirection: "Wind Direction",
	DataTypePrecipitation: "Precipitation",
	DataTypeCO2Level:      "CO2 Concentration",
	DataTypeOzoneLevel:    "Ozone Level",
	DataTypeSeaLevel:      "Sea Level",
	DataTypeIceCoverage:   "Ice Coverage",
}

// ClimateDataPoint is a single reading from a data source.
// Only Processed changes after creation.
type ClimateDataPoint struct {
	ID             string    `json:"id" db:"id"`
	DataSourceID   string    `json:"data_source_id" db:"data_source_id"`
	DataSourceName string    `json:"data_source_name,omitempty" db:"data_source_name"`
	DataType       DataType  `json:"data_type" db:"data_type"`
	Value          float64   `json:"value" db:"value"`
	Unit           string    `json:"unit" db:"unit"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	QualityScore   float64   `json:"quality_score" db:"quality_score"`
	IsAnomaly      bool      `json:"is_anomaly" db:"is_anomaly"`
	Processed      bool      `json:"processed" db:"processed"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// DataPointRequest is the input for recording a reading
type DataPointRequest struct {
	DataSourceID string   `json:"data_source_id"`
	DataType     string   `json:"data_type"`
	Value        *float64 `json:"value"`
	Unit         string   `json:"unit"`
	Timestamp    string   `json:"timestamp"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	IsAnomaly    bool     `json:"is_anomaly"`
}

// DataTypeStat aggregates readings of one data type
type DataTypeStat struct {
	DataType DataType `json:"data_type" db:"data_type"`
	Count    int      `json:"count" db:"count"`
	Avg      float64  `json:"avg" db:"avg"`
	Min      float64  `json:"min" db:"min"`
	Max      float64  `json:"max" db:"max"`
}

// ClimateSummary aggregates a filtered set of readings. It always covers the
// whole filtered population, never only the current page.
type ClimateSummary struct {
	TotalRecords   int            `json:"total_records"`
	AnomalyCount   int            `json:"anomaly_count"`
	AvgValue       *float64       `json:"avg_value"`
	MinValue       *float64       `json:"min_value"`
	MaxValue       *float64       `json:"max_value"`
	AvgTemperature *float64       `json:"avg_temperature"`
	MaxCO2         *float64       `json:"max_co2"`
	ByType         []DataTypeStat `json:"by_type"`
}

// ChartSeries is the JSON shape of the climate chart endpoint
type ChartSeries struct {
	Timestamps []string  `json:"timestamps"`
	Values     []float64 `json:"values"`
	DataType   DataType  `json:"dataType"`
	Unit       string    `json:"unit"`
}
