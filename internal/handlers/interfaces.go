package handlers

import (
	"civicwatch/internal/models"
)

// Detector runs inference on an encoded image.
type Detector interface {
	Detect(image []byte) (*models.Summary, []byte, error)
}

// VideoProcessor samples an uploaded video into an aggregate summary and
// a bounded keyframe list.
type VideoProcessor interface {
	ProcessVideo(path string) (*models.Summary, []string, error)
}

// Notifier pushes dashboard updates to connected live clients.
type Notifier interface {
	Broadcast(message []byte)
}
