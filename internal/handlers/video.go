package handlers

import (
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
)

// VideoResponse is the result of a processed video submission. ReportID is
// nil when no frame contained a detection and no report was persisted.
type VideoResponse struct {
	Summary   *models.Summary `json:"summary"`
	Severity  string          `json:"severity"`
	KeyFrames []string        `json:"key_frames"`
	ReportID  *int64          `json:"report_id"`
}

// PredictVideoHandler accepts a video upload, samples and runs inference
// on its frames, and persists a video report when at least one keyframe
// was extracted.
func PredictVideoHandler(processor VideoProcessor, repo repository.ReportRepository, notifier Notifier, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid upload")
			return
		}

		file, _, err := r.FormFile("video")
		if err != nil {
			respondError(w, http.StatusBadRequest, "No video provided")
			return
		}
		defer file.Close()

		tempPath, err := saveTempVideo(cfg.TempDirectory, file)
		if err != nil {
			logger.Error("Failed to save uploaded video: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to save video")
			return
		}
		defer os.Remove(tempPath)

		summary, keyframes, err := processor.ProcessVideo(tempPath)
		if err != nil {
			logger.Warning("Rejected unreadable video upload: %v", err)
			respondError(w, http.StatusBadRequest, "Could not process video")
			return
		}

		severity := classify.SeverityFor(summary, models.KindVideo)

		// Video reports are only created when at least one keyframe exists;
		// a detection-free video is a valid, report-free outcome.
		var reportID *int64
		if len(keyframes) > 0 {
			report := &models.Report{
				ImagePath:  keyframes[0], // first keyframe doubles as the thumbnail
				Summary:    summary,
				Severity:   severity,
				Kind:       models.KindVideo,
				Department: classify.Department(summary),
			}

			id, err := repo.Insert(report)
			if err != nil {
				logger.Error("Failed to insert video report: %v", err)
				respondError(w, http.StatusInternalServerError, "Failed to save report")
				return
			}
			reportID = &id

			logger.Info("Video report %d created: %d detections, %d keyframes, %s severity",
				id, summary.Total(), len(keyframes), severity)

			broadcastStats(repo, notifier, logger)
		}

		respondJSON(w, http.StatusOK, VideoResponse{
			Summary:   summary,
			Severity:  severity,
			KeyFrames: keyframes,
			ReportID:  reportID,
		})
	}
}

// saveTempVideo spools the uploaded video to the temp directory for the
// frame sampler, which needs a seekable file.
func saveTempVideo(tempDir string, src io.Reader) (string, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	tempPath := filepath.Join(tempDir, fmt.Sprintf("temp_%s.mp4", time.Now().Format("20060102_150405.000")))
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp video: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp video: %w", err)
	}
	return tempPath, nil
}
