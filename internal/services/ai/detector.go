package ai

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"os"
	"sort"

	"civicwatch/internal/config"
	"civicwatch/internal/logger"
	"civicwatch/internal/models"

	"gocv.io/x/gocv"
)

// Detection is a single detected object on an image.
type Detection struct {
	Label      string
	Confidence float64
	X          int
	Y          int
	Width      int
	Height     int
}

// DetectorService wraps the pre-trained detection network. The network is
// treated as a black box: images in, labeled boxes out. Confidence
// threshold and the per-call detection cap are process-wide configuration.
type DetectorService struct {
	net           gocv.Net
	classNames    []string
	confThreshold float32
	maxDetections int
	logger        *logger.Logger
}

// NewDetectorService loads the detection network and its class names.
// A missing or unloadable model is an unrecoverable configuration error;
// callers are expected to exit before serving any request.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if _, err := os.Stat(cfg.ModelConfigPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model config file not found: %s", cfg.ModelConfigPath)
	}

	classNames, err := loadClassNames(cfg.ClassNamesPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ModelConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", cfg.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	logger.Info("Detection network initialized with %d classes", len(classNames))

	return &DetectorService{
		net:           net,
		classNames:    classNames,
		confThreshold: float32(cfg.ConfidenceThreshold),
		maxDetections: cfg.MaxDetections,
		logger:        logger,
	}, nil
}

// Close releases the network.
func (s *DetectorService) Close() {
	s.net.Close()
}

// Detect runs inference on an encoded image and returns the per-class
// occurrence summary plus the annotated image. An image with zero
// detections yields an empty summary, not an error.
func (s *DetectorService) Detect(imageBytes []byte) (*models.Summary, []byte, error) {
	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, nil, fmt.Errorf("decoded image is empty")
	}

	detections := s.forward(mat)

	summary := models.NewSummary()
	for _, det := range detections {
		summary.Add(det.Label, 1)
	}

	annotated, err := s.annotate(mat, detections)
	if err != nil {
		return nil, nil, err
	}
	return summary, annotated, nil
}

// forward runs the network and keeps the highest-confidence detections,
// capped at the configured per-call maximum.
func (s *DetectorService) forward(mat gocv.Mat) []Detection {
	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	var detections []Detection

	outputReshaped := output.Reshape(1, output.Total()/7)
	defer outputReshaped.Close()
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := outputReshaped.GetFloatAt(i, 2)
		if confidence <= s.confThreshold {
			continue
		}
		classID := int(outputReshaped.GetFloatAt(i, 1))
		x := int(outputReshaped.GetFloatAt(i, 3) * float32(mat.Cols()))
		y := int(outputReshaped.GetFloatAt(i, 4) * float32(mat.Rows()))
		width := int(outputReshaped.GetFloatAt(i, 5)*float32(mat.Cols())) - x
		height := int(outputReshaped.GetFloatAt(i, 6)*float32(mat.Rows())) - y

		detections = append(detections, Detection{
			Label:      s.classLabel(classID),
			Confidence: float64(confidence),
			X:          x,
			Y:          y,
			Width:      width,
			Height:     height,
		})
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})
	if len(detections) > s.maxDetections {
		detections = detections[:s.maxDetections]
	}
	return detections
}

// annotate draws labeled rectangles for each detection and encodes the
// result as JPEG.
func (s *DetectorService) annotate(mat gocv.Mat, detections []Detection) ([]byte, error) {
	red := color.RGBA{R: 255, G: 0, B: 0, A: 0}

	for _, det := range detections {
		rect := image.Rect(det.X, det.Y, det.X+det.Width, det.Y+det.Height)
		if err := gocv.Rectangle(&mat, rect, red, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %w", err)
		}

		label := fmt.Sprintf("%s (%.2f)", det.Label, det.Confidence)
		pt := image.Pt(det.X, det.Y-5)
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, red, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	annotated := make([]byte, len(buf.GetBytes()))
	copy(annotated, buf.GetBytes())
	return annotated, nil
}

// classLabel resolves a network class id to its name.
func (s *DetectorService) classLabel(classID int) string {
	// Detection networks index classes from 1.
	idx := classID - 1
	if idx >= 0 && idx < len(s.classNames) {
		return s.classNames[idx]
	}
	return fmt.Sprintf("class_%d", classID)
}

// loadClassNames reads one class name per line.
func loadClassNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class names file: %w", err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read class names file: %w", err)
	}
	return names, nil
}
