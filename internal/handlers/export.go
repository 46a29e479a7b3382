package handlers

import (
	"fmt"
	"net/http"
	"time"

	"civicwatch/internal/logger"
	"civicwatch/internal/repository"
	"civicwatch/internal/services/export"
)

// ExportCSVHandler streams the full report history as a CSV attachment.
func ExportCSVHandler(repo repository.ReportRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		reports, err := repo.GetAll()
		if err != nil {
			logger.Error("Failed to load reports for export: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to export reports")
			return
		}

		filename := fmt.Sprintf("reports_export_%s.csv", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := export.WriteCSV(w, reports); err != nil {
			logger.Error("Failed to write CSV export: %v", err)
		}
	}
}
