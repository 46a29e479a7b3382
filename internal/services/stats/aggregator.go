// Package stats computes dashboard statistics over the full report
// history. Everything here is a read-only, single-pass scan; recomputing
// is always safe.
package stats

import (
	"civicwatch/internal/classify"
	"civicwatch/internal/models"
)

// Reported average inference latency and model accuracy shown on the
// homepage. Static until measured values are collected.
const (
	avgInference  = "120ms"
	modelAccuracy = 78
)

// Aggregate scans every report once and produces the dashboard totals
// plus the heatmap point list for reports carrying coordinates.
func Aggregate(reports []models.Report) (models.DashboardStats, []models.HeatmapPoint) {
	stats := models.DashboardStats{
		TotalReports: len(reports),
	}
	heatmap := make([]models.HeatmapPoint, 0, len(reports))

	for _, report := range reports {
		if report.Summary.Empty() {
			stats.NoIssueReports++
		} else {
			for _, class := range report.Summary.Keys() {
				switch classify.Category(class) {
				case classify.CategoryPothole:
					stats.TotalPotholes += report.Summary.Count(class)
				case classify.CategoryGarbage:
					stats.TotalGarbage += report.Summary.Count(class)
				}
			}
		}

		if report.HasLocation() {
			heatmap = append(heatmap, models.HeatmapPoint{
				Latitude:  *report.Latitude,
				Longitude: *report.Longitude,
				Weight:    classify.HeatWeight(report.Severity),
			})
		}
	}

	return stats, heatmap
}

// Home builds the homepage stats preview from the full history.
func Home(reports []models.Report) models.HomeStats {
	aggregated, _ := Aggregate(reports)
	return models.HomeStats{
		TotalReports:  aggregated.TotalReports,
		TotalPotholes: aggregated.TotalPotholes,
		TotalGarbage:  aggregated.TotalGarbage,
		AvgInference:  avgInference,
		ModelAccuracy: modelAccuracy,
	}
}
