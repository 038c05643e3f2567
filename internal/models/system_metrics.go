package models

import (
	"time"
)

// SystemMetricsSample is one point of the append-only host metrics series
type SystemMetricsSample struct {
	ID                 string    `json:"id" db:"id"`
	CPUUsage           float64   `json:"cpu_usage" db:"cpu_usage"`
	MemoryUsage        float64   `json:"memory_usage" db:"memory_usage"`
	DiskUsage          float64   `json:"disk_usage" db:"disk_usage"`
	NetworkIO          float64   `json:"network_io" db:"network_io"`
	ActiveUsers        int       `json:"active_users" db:"active_users"`
	DataProcessingRate float64   `json:"data_processing_rate" db:"data_processing_rate"` // records per minute
	Timestamp          time.Time `json:"timestamp" db:"timestamp"`
}

// MetricsSeries is the JSON shape of the system metrics endpoint
type MetricsSeries struct {
	Timestamps  []string  `json:"timestamps"`
	CPUUsage    []float64 `json:"cpu_usage"`
	MemoryUsage []float64 `json:"memory_usage"`
	DiskUsage   []float64 `json:"disk_usage"`
	NetworkIO   []float64 `json:"network_io"`
	ActiveUsers []int     `json:"active_users"`
}
