package handlers

import (
	"net/http"
	"strconv"

	"civicwatch/internal/logger"
	"civicwatch/internal/repository"
)

// DeleteReportHandler removes a single report and its media file. An
// unknown id is a no-op, not an error.
func DeleteReportHandler(repo repository.ReportRepository, notifier Notifier, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid report id")
			return
		}

		if err := repo.Delete(id); err != nil {
			logger.Error("Failed to delete report %d: %v", id, err)
			respondError(w, http.StatusInternalServerError, "Failed to delete report")
			return
		}

		logger.Info("Deleted report %d", id)
		broadcastStats(repo, notifier, logger)

		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// DeleteAllReportsHandler removes every report and all referenced media.
func DeleteAllReportsHandler(repo repository.ReportRepository, notifier Notifier, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if err := repo.DeleteAll(); err != nil {
			logger.Error("Failed to delete all reports: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to delete reports")
			return
		}

		logger.Info("Deleted all reports")
		broadcastStats(repo, notifier, logger)

		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
