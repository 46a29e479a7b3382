package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port                int
	DBPath              string
	ModelPath           string
	ModelConfigPath     string
	ClassNamesPath      string
	ReportsDirectory    string
	TempDirectory       string
	LogDirectory        string
	ConfidenceThreshold float64 // Applied uniformly to every inference call
	MaxDetections       int     // Detections kept per inference call
	DefaultFPS          int     // Assumed frame rate when the container reports none
	MaxKeyframes        int     // Saved keyframes per processed video
}

func Load() *Config {
	return &Config{
		Port:                getEnvAsInt("PORT", 8080),
		DBPath:              getEnv("DB_PATH", filepath.Join(".", "data", "reports.db")),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		ClassNamesPath:      getEnv("CLASS_NAMES_PATH", filepath.Join(".", "models", "classes.txt")),
		ReportsDirectory:    getEnv("REPORTS_DIR", filepath.Join(".", "static", "reports")),
		TempDirectory:       getEnv("TEMP_DIR", filepath.Join(".", "static", "temp")),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.25),
		MaxDetections:       getEnvAsInt("MAX_DETECTIONS", 5),
		DefaultFPS:          getEnvAsInt("DEFAULT_FPS", 30),
		MaxKeyframes:        getEnvAsInt("MAX_KEYFRAMES", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
