package routes

import (
	"net/http"

	"civicwatch/internal/config"
	"civicwatch/internal/handlers"
	"civicwatch/internal/logger"
	"civicwatch/internal/middleware"
	"civicwatch/internal/repository"
	ws "civicwatch/internal/services/websocket"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Detector  handlers.Detector
	Processor handlers.VideoProcessor
	Repo      repository.ReportRepository
	Hub       *ws.HubService
	Config    *config.Config
	Logger    *logger.Logger
}

// SetupRoutes registers API endpoints, static report media serving, and
// wraps the mux with the request-logging middleware.
func SetupRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Report media (annotated images and video keyframes)
	mux.Handle("/static/reports/", http.StripPrefix("/static/reports/",
		http.FileServer(http.Dir(d.Config.ReportsDirectory))))

	// Submission endpoints
	mux.HandleFunc("/api/predict", handlers.PredictHandler(d.Detector, d.Repo, d.Hub, d.Config, d.Logger))
	mux.HandleFunc("/api/predict-video", handlers.PredictVideoHandler(d.Processor, d.Repo, d.Hub, d.Config, d.Logger))

	// History and statistics
	mux.HandleFunc("/api/history", handlers.HistoryHandler(d.Repo, d.Logger))
	mux.HandleFunc("/api/stats", handlers.StatsHandler(d.Repo, d.Logger))
	mux.HandleFunc("/api/export", handlers.ExportCSVHandler(d.Repo, d.Logger))

	// Report mutations
	mux.HandleFunc("/api/feedback", handlers.FeedbackHandler(d.Repo, d.Logger))
	mux.HandleFunc("/api/reports/delete", handlers.DeleteReportHandler(d.Repo, d.Hub, d.Logger))
	mux.HandleFunc("/api/reports/clear", handlers.DeleteAllReportsHandler(d.Repo, d.Hub, d.Logger))

	// Maintenance
	mux.HandleFunc("/api/maintenance/backfill-departments", handlers.BackfillDepartmentsHandler(d.Repo, d.Logger))

	// Live dashboard updates
	mux.HandleFunc("/api/live", handlers.LiveHandler(d.Hub, d.Logger))

	return middleware.LoggingMiddleware(mux, d.Logger)
}
