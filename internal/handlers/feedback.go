package handlers

import (
	"encoding/json"
	"net/http"

	"civicwatch/internal/logger"
	"civicwatch/internal/repository"
)

// FeedbackRequest is a user judgement on a report's detections.
type FeedbackRequest struct {
	ReportID int64  `json:"report_id"`
	Feedback string `json:"feedback"`
}

// FeedbackHandler records whether a user judged a report's detections
// correct or incorrect. Invalid values and unknown report ids are
// rejected without touching stored state.
func FeedbackHandler(repo repository.ReportRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid feedback")
			return
		}

		if err := repo.UpdateFeedback(req.ReportID, req.Feedback); err != nil {
			logger.Warning("Rejected feedback for report %d: %v", req.ReportID, err)
			respondError(w, http.StatusBadRequest, "Invalid feedback")
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"status": "feedback saved"})
	}
}
