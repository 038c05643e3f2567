package models

import (
	"time"
)

// ModelType classifies a registered machine-learning model
type ModelType string

const (
	ModelTypeAnomalyDetection    ModelType = "anomaly_detection"
	ModelTypeTrendPrediction     ModelType = "trend_prediction"
	ModelTypeCorrelationAnalysis ModelType = "correlation_analysis"
	ModelTypeWeatherForecast     ModelType = "weather_forecast"
)

// ValidModelTypes defines allowed model types and their labels
var ValidModelTypes = map[ModelType]string{
	ModelTypeAnomalyDetection:    "Anomaly Detection",
	ModelTypeTrendPrediction:     "Trend Prediction",
	ModelTypeCorrelationAnalysis: "Correlation Analysis",
	ModelTypeWeatherForecast:     "Weather Forecasting",
}

// MLModel is a registry entry; no training happens in this service
type MLModel struct {
	ID                  string    `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	ModelType           ModelType `json:"model_type" db:"model_type"`
	Version             string    `json:"version" db:"version"`
	Description         string    `json:"description" db:"description"`
	AccuracyScore       *float64  `json:"accuracy_score,omitempty" db:"accuracy_score"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	TrainingPeriodStart time.Time `json:"training_period_start" db:"training_period_start"`
	TrainingPeriodEnd   time.Time `json:"training_period_end" db:"training_period_end"`
	CreatedBy           string    `json:"created_by" db:"created_by"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	LastUpdated         time.Time `json:"last_updated" db:"last_updated"`
}

// MLModelRequest is the input for registering a model
type MLModelRequest struct {
	Name                string   `json:"name"`
	ModelType           string   `json:"model_type"`
	Version             string   `json:"version"`
	Description         string   `json:"description"`
	AccuracyScore       *float64 `json:"accuracy_score,omitempty"`
	TrainingPeriodStart string   `json:"training_period_start"`
	TrainingPeriodEnd   string   `json:"training_period_end"`
}
