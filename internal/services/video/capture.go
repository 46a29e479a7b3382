package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// videoFile is the gocv-backed frame source for on-disk videos.
type videoFile struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// openVideoFile opens a video for sequential decoding. An unreadable or
// corrupt file fails here, before any report state exists.
func openVideoFile(path string) (*videoFile, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	return &videoFile{
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// FPS returns the container-reported frame rate, 0 when unknown.
func (v *videoFile) FPS() int {
	return int(v.capture.Get(gocv.VideoCaptureFPS))
}

// Next decodes the next frame, returning false when the stream is exhausted.
func (v *videoFile) Next() bool {
	return v.capture.Read(&v.mat) && !v.mat.Empty()
}

// Frame encodes the current frame as JPEG.
func (v *videoFile) Frame() ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", v.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Close releases the capture and frame buffer.
func (v *videoFile) Close() {
	v.mat.Close()
	v.capture.Close()
}
