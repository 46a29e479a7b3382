package models

import (
	"encoding/json"
	"fmt"
)

// DashboardStats contains aggregate statistics over the full report history.
type DashboardStats struct {
	TotalReports   int `json:"total_reports"`
	TotalPotholes  int `json:"total_potholes"`
	TotalGarbage   int `json:"total_garbage"`
	NoIssueReports int `json:"no_issue_reports"`
}

// HomeStats is the homepage dashboard preview payload.
type HomeStats struct {
	TotalReports  int    `json:"total_reports"`
	TotalPotholes int    `json:"total_potholes"`
	TotalGarbage  int    `json:"total_garbage"`
	AvgInference  string `json:"avg_inference"`
	ModelAccuracy int    `json:"model_accuracy"`
}

// HeatmapPoint is a weighted map coordinate derived from report severity.
type HeatmapPoint struct {
	Latitude  float64
	Longitude float64
	Weight    float64
}

// MarshalJSON emits the [lat, lon, weight] triple consumed by the
// heatmap layer on the history page.
func (p HeatmapPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.Latitude, p.Longitude, p.Weight})
}

// UnmarshalJSON reads the [lat, lon, weight] triple form.
func (p *HeatmapPoint) UnmarshalJSON(data []byte) error {
	var triple [3]float64
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("failed to decode heatmap point: %w", err)
	}
	p.Latitude, p.Longitude, p.Weight = triple[0], triple[1], triple[2]
	return nil
}
