package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"civicwatch/internal/config"
	"civicwatch/internal/logger"
	"civicwatch/internal/repository/sqlite"
	"civicwatch/internal/routes"
	"civicwatch/internal/services/ai"
	"civicwatch/internal/services/video"
	ws "civicwatch/internal/services/websocket"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	repo     *sqlite.ReportRepository
	detector *ai.DetectorService
	sampler  *video.Sampler
	hub      *ws.HubService
}

// NewApp wires the full pipeline. A missing detection model is an
// unrecoverable configuration error surfaced before serving starts.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	detector, err := ai.NewDetectorService(cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:   cfg,
		logger:   log,
		db:       db,
		repo:     sqlite.NewReportRepository(db, "."),
		detector: detector,
		sampler:  video.NewSampler(detector, cfg, log),
		hub:      ws.NewHubService(log),
	}, nil
}

func (a *App) Run() error {
	go a.hub.Run()

	router := routes.SetupRoutes(routes.Deps{
		Detector:  a.detector,
		Processor: a.sampler,
		Repo:      a.repo,
		Hub:       a.hub,
		Config:    a.config,
		Logger:    a.logger,
	})

	fmt.Printf("Civic issue detection server\n")
	fmt.Printf("URL:      http://localhost:%d\n", a.config.Port)
	fmt.Printf("Database: %s\n", a.config.DBPath)
	fmt.Printf("Model:    %s\n", a.config.ModelPath)
	fmt.Printf("Reports:  %s\n", a.config.ReportsDirectory)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}

// Close releases the detector and the database.
func (a *App) Close() {
	a.detector.Close()
	a.db.Close()
}
