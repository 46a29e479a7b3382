// Package video converts uploaded videos into an aggregate detection
// summary and a bounded set of persisted keyframes.
package video

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"civicwatch/internal/config"
	"civicwatch/internal/logger"
	"civicwatch/internal/models"
)

// Detector provides per-frame inference.
type Detector interface {
	Detect(image []byte) (*models.Summary, []byte, error)
}

// frameSource yields decoded frames sequentially, scanner style.
type frameSource interface {
	// FPS returns the source frame rate, or 0 when unavailable.
	FPS() int
	// Next advances to the next frame, returning false at end of stream.
	Next() bool
	// Frame encodes the current frame.
	Frame() ([]byte, error)
	Close()
}

// Sampler runs inference on a bounded sample of a video's frames.
type Sampler struct {
	detector     Detector
	reportsDir   string
	defaultFPS   int
	maxKeyframes int
	logger       *logger.Logger
}

// NewSampler creates a frame sampler persisting keyframes under the
// configured reports directory.
func NewSampler(detector Detector, cfg *config.Config, logger *logger.Logger) *Sampler {
	return &Sampler{
		detector:     detector,
		reportsDir:   cfg.ReportsDirectory,
		defaultFPS:   cfg.DefaultFPS,
		maxKeyframes: cfg.MaxKeyframes,
		logger:       logger,
	}
}

// ProcessVideo samples a video file at roughly one frame per second,
// aggregates detections across all sampled frames, and persists up to the
// keyframe cap of annotated frames. It blocks until the whole video has
// been consumed. A video without detections returns an empty summary and
// no keyframes; the caller persists no report in that case.
func (s *Sampler) ProcessVideo(path string) (*models.Summary, []string, error) {
	src, err := openVideoFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	return s.sample(src)
}

// sample applies the temporal stride and save-cap policy over a frame
// source. Frames past the cap still count toward the total summary so the
// aggregate stays accurate on long, issue-dense videos.
func (s *Sampler) sample(src frameSource) (*models.Summary, []string, error) {
	fps := src.FPS()
	if fps <= 0 {
		fps = s.defaultFPS
	}

	if err := os.MkdirAll(s.reportsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	total := models.NewSummary()
	var keyframes []string

	frameIndex := 0
	saved := 0

	for src.Next() {
		// One sampled frame per second of source time.
		if frameIndex%fps != 0 {
			frameIndex++
			continue
		}
		frameIndex++

		frame, err := src.Frame()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read frame %d: %w", frameIndex-1, err)
		}

		summary, annotated, err := s.detector.Detect(frame)
		if err != nil {
			return nil, nil, fmt.Errorf("inference failed on frame %d: %w", frameIndex-1, err)
		}

		total.Merge(summary)

		if summary.Empty() || saved >= s.maxKeyframes {
			continue
		}

		filename := fmt.Sprintf("video_frame_%s_%d.jpg", time.Now().Format("20060102_150405"), saved)
		if err := os.WriteFile(filepath.Join(s.reportsDir, filename), annotated, 0644); err != nil {
			return nil, nil, fmt.Errorf("failed to save keyframe: %w", err)
		}
		keyframes = append(keyframes, filepath.ToSlash(filepath.Join(s.reportsDir, filename)))
		saved++
	}

	s.logger.Info("Sampled video: %d detections across %d classes, %d keyframes saved",
		total.Total(), total.Len(), len(keyframes))

	return total, keyframes, nil
}
