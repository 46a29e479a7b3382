package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"civicwatch/internal/classify"
	"civicwatch/internal/config"
	"civicwatch/internal/logger"
	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/services/geo"
)

const maxUploadSize = 32 << 20 // 32 MB

// PredictResponse is the per-submission result returned to the client.
type PredictResponse struct {
	Image      string          `json:"image"` // base64-encoded annotated image
	Summary    *models.Summary `json:"summary"`
	Severity   string          `json:"severity"`
	Department string          `json:"department"`
	ReportID   int64           `json:"report_id"`
}

// PredictHandler accepts an image upload, runs inference, persists a
// report, and returns the annotated result.
func PredictHandler(detector Detector, repo repository.ReportRepository, notifier Notifier, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid upload")
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "No image provided")
			return
		}
		defer file.Close()

		imageBytes, err := io.ReadAll(file)
		if err != nil || len(imageBytes) == 0 {
			respondError(w, http.StatusBadRequest, "No image provided")
			return
		}

		summary, annotated, err := detector.Detect(imageBytes)
		if err != nil {
			logger.Warning("Rejected undecodable image upload: %v", err)
			respondError(w, http.StatusBadRequest, "Could not decode image")
			return
		}

		// Invalid coordinates never reject a submission; fall back to the
		// image's EXIF GPS tags when the form carries none.
		latitude, longitude := geo.ParseCoordinates(r.FormValue("latitude"), r.FormValue("longitude"))
		if latitude == nil {
			latitude, longitude = geo.FromEXIF(imageBytes)
		}

		severity := classify.SeverityFor(summary, models.KindImage)
		department := classify.Department(summary)

		imagePath, err := saveReportImage(cfg.ReportsDirectory, annotated)
		if err != nil {
			logger.Error("Failed to save report image: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to save report")
			return
		}

		report := &models.Report{
			ImagePath:  imagePath,
			Summary:    summary,
			Severity:   severity,
			Latitude:   latitude,
			Longitude:  longitude,
			Kind:       models.KindImage,
			Department: department,
		}

		id, err := repo.Insert(report)
		if err != nil {
			logger.Error("Failed to insert report: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to save report")
			return
		}

		logger.Info("Report %d created: %d detections, %s severity, routed to %s",
			id, summary.Total(), severity, department)

		broadcastStats(repo, notifier, logger)

		respondJSON(w, http.StatusOK, PredictResponse{
			Image:      base64.StdEncoding.EncodeToString(annotated),
			Summary:    summary,
			Severity:   severity,
			Department: department,
			ReportID:   id,
		})
	}
}

// saveReportImage persists an annotated image under the reports directory
// and returns its stored (relative) path.
func saveReportImage(reportsDir string, annotated []byte) (string, error) {
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	filename := fmt.Sprintf("report_%s.jpg", time.Now().Format("20060102_150405.000"))
	if err := os.WriteFile(filepath.Join(reportsDir, filename), annotated, 0644); err != nil {
		return "", fmt.Errorf("failed to write report image: %w", err)
	}
	return filepath.ToSlash(filepath.Join(reportsDir, filename)), nil
}
