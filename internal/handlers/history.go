package handlers

import (
	"net/http"

	"civicwatch/internal/logger"
	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/services/stats"
)

// HistoryResponse bundles the report history with aggregate statistics
// and the heatmap point list for the map view.
type HistoryResponse struct {
	Reports       []models.Report       `json:"reports"`
	Stats         models.DashboardStats `json:"stats"`
	HeatmapPoints []models.HeatmapPoint `json:"heatmap_points"`
}

// HistoryHandler returns the full report history, newest first, with
// computed aggregate statistics.
func HistoryHandler(repo repository.ReportRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		reports, err := repo.GetAll()
		if err != nil {
			logger.Error("Failed to load report history: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to load history")
			return
		}

		aggregated, heatmap := stats.Aggregate(reports)

		if reports == nil {
			reports = []models.Report{}
		}
		respondJSON(w, http.StatusOK, HistoryResponse{
			Reports:       reports,
			Stats:         aggregated,
			HeatmapPoints: heatmap,
		})
	}
}

// StatsHandler returns the homepage statistics preview.
func StatsHandler(repo repository.ReportRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		reports, err := repo.GetAll()
		if err != nil {
			logger.Error("Failed to load reports for stats: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to load stats")
			return
		}

		respondJSON(w, http.StatusOK, stats.Home(reports))
	}
}
