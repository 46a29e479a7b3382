package handlers

import (
	"net/http"

	"civicwatch/internal/logger"
	"civicwatch/internal/repository"
)

// BackfillDepartmentsHandler recomputes department routing for historical
// reports written before the current rules existed. Idempotent; safe to
// run repeatedly.
func BackfillDepartmentsHandler(repo repository.ReportRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		count, err := repo.BackfillDepartments()
		if err != nil {
			logger.Error("Department backfill failed: %v", err)
			respondError(w, http.StatusInternalServerError, "Backfill failed")
			return
		}

		logger.Info("Department backfill updated %d reports", count)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "success",
			"updated_count": count,
		})
	}
}
