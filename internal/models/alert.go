package models

import (
	"time"
)

// Severity ranks how urgent an alert is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverities defines allowed alert severities
var ValidSeverities = map[Severity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// AlertType classifies what raised an alert
type AlertType string

const (
	AlertTypeTemperatureAnomaly AlertType = "temperature_anomaly"
	AlertTypeExtremeWeather     AlertType = "extreme_weather"
	AlertTypeAirQuality         AlertType = "air_quality"
	AlertTypeSeaLevelRise       AlertType = "sea_level_rise"
	AlertTypeSystemFailure      AlertType = "system_failure"
)

// ValidAlertTypes defines allowed alert types and their labels
var ValidAlertTypes = map[AlertType]string{
	AlertTypeTemperatureAnomaly: "Temperature Anomaly",
	AlertTypeExtremeWeather:     "Extreme Weather Event",
	AlertTypeAirQuality:         "Air Quality Alert",
	AlertTypeSeaLevelRise:       "Sea Level Rise",
	AlertTypeSystemFailure:      "System/Sensor Failure",
}

// Alert is a climate or system alert. Acknowledgment and resolution are
// independent transitions.
type Alert struct {
	ID             string     `json:"id" db:"id"`
	AlertType      AlertType  `json:"alert_type" db:"alert_type"`
	Severity       Severity   `json:"severity" db:"severity"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	DataSourceID   *string    `json:"data_source_id,omitempty" db:"data_source_id"`
	ThresholdValue *float64   `json:"threshold_value,omitempty" db:"threshold_value"`
	ActualValue    *float64   `json:"actual_value,omitempty" db:"actual_value"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// AlertRequest is the input for raising an alert
type AlertRequest struct {
	AlertType      string   `json:"alert_type"`
	Severity       string   `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	DataSourceID   *string  `json:"data_source_id,omitempty"`
	ThresholdValue *float64 `json:"threshold_value,omitempty"`
	ActualValue    *float64 `json:"actual_value,omitempty"`
}
