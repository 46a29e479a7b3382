package models

import "time"

// Report kinds.
const (
	KindImage = "image"
	KindVideo = "video"
)

// Severity tiers.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Feedback values a user may attach to a report.
const (
	FeedbackCorrect   = "correct"
	FeedbackIncorrect = "incorrect"
)

// Report represents one persisted issue observation.
type Report struct {
	ID         int64     `json:"id"`
	ImagePath  string    `json:"image_path"`
	Summary    *Summary  `json:"summary"`
	Severity   string    `json:"severity"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	CreatedAt  time.Time `json:"created_at"`
	Kind       string    `json:"kind"`
	Department string    `json:"department"`
	Feedback   string    `json:"feedback,omitempty"`
}

// HasLocation reports whether both coordinates are present.
func (r *Report) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}
