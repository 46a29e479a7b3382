package handlers

import (
	"encoding/json"
	"net/http"

	"civicwatch/internal/logger"
	"civicwatch/internal/repository"
	"civicwatch/internal/services/stats"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error payload.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// broadcastStats pushes refreshed homepage statistics to live dashboard
// clients after a report mutation. Best effort: failures are logged,
// never surfaced to the submitting request.
func broadcastStats(repo repository.ReportRepository, notifier Notifier, logger *logger.Logger) {
	if notifier == nil {
		return
	}

	reports, err := repo.GetAll()
	if err != nil {
		logger.Error("Failed to load reports for live update: %v", err)
		return
	}

	payload, err := json.Marshal(stats.Home(reports))
	if err != nil {
		logger.Error("Failed to encode live update: %v", err)
		return
	}
	notifier.Broadcast(payload)
}
