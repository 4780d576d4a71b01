package capture

import (
	"fmt"
	"sync"

	"faceattend/internal/logger"

	"gocv.io/x/gocv"
)

// FrameSource provides JPEG frames for sampling.
type FrameSource interface {
	// Ready reports whether the source can currently deliver frames. A tick
	// against a not-ready source is skipped silently.
	Ready() bool
	// Grab returns the current frame encoded as JPEG.
	Grab() ([]byte, error)
}

// Camera is a FrameSource backed by the local webcam.
type Camera struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	logger  *logger.Logger
	mu      sync.Mutex
	closed  bool
}

// OpenCamera opens the webcam with the given device ID (the front-facing
// camera on a kiosk).
func OpenCamera(deviceID int, logger *logger.Logger) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %v", deviceID, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d is not available", deviceID)
	}

	logger.Info("Camera %d opened", deviceID)

	return &Camera{
		capture: capture,
		mat:     gocv.NewMat(),
		logger:  logger,
	}, nil
}

// Ready reports whether the camera stream is open.
func (c *Camera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.capture.IsOpened()
}

// Grab reads the current frame and encodes it as JPEG at native resolution.
func (c *Camera) Grab() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("camera is closed")
	}

	if ok := c.capture.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, fmt.Errorf("failed to read camera frame")
	}

	buf, err := gocv.IMEncode(".jpg", c.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode camera frame: %v", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())

	return frame, nil
}

// Close releases the camera handle.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.mat.Close()

	return c.capture.Close()
}
