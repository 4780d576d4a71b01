package detect

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"faceattend/internal/logger"

	"gocv.io/x/gocv"
)

// ConfidenceThreshold is the minimum score for a detection to count as a face.
const ConfidenceThreshold = 0.5

// Detector runs a single-shot face detection network against JPEG frames.
type Detector struct {
	net        gocv.Net
	ready      bool
	modelPath  string
	configPath string
	logger     *logger.Logger
	mu         sync.Mutex
}

// New loads the face detection network once. The model is loaded eagerly; a
// load failure is returned to the caller and leaves the detector not ready.
func New(modelPath, configPath string, logger *logger.Logger) (*Detector, error) {
	d := &Detector{
		modelPath:  modelPath,
		configPath: configPath,
		logger:     logger,
	}

	if err := d.initializeNet(); err != nil {
		return d, err
	}

	return d, nil
}

// initializeNet loads the detection network from the model and config files.
func (d *Detector) initializeNet() error {
	if _, err := os.Stat(d.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", d.modelPath)
	}

	if _, err := os.Stat(d.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", d.configPath)
	}

	net := gocv.ReadNet(d.modelPath, d.configPath)

	if net.Empty() {
		return fmt.Errorf("failed to load face detection network")
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		return fmt.Errorf("failed to set preferable backend or target")
	}

	d.net = net
	d.ready = true
	d.logger.Info("Face detection network initialized")
	return nil
}

// Ready reports whether the network is loaded. Sampling must not start until
// this is true.
func (d *Detector) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// DetectFaces returns the bounding boxes of faces found in a JPEG frame.
func (d *Detector) DetectFaces(frame []byte) ([]image.Rectangle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil, fmt.Errorf("face detection network not initialized")
	}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded frame is empty")
	}

	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(300, 300), gocv.NewScalar(104, 177, 123, 0), false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	var faces []image.Rectangle

	outputReshaped := output.Reshape(1, output.Total()/7)
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := outputReshaped.GetFloatAt(i, 2)
		if confidence > ConfidenceThreshold {
			x0 := int(outputReshaped.GetFloatAt(i, 3) * float32(mat.Cols()))
			y0 := int(outputReshaped.GetFloatAt(i, 4) * float32(mat.Rows()))
			x1 := int(outputReshaped.GetFloatAt(i, 5) * float32(mat.Cols()))
			y1 := int(outputReshaped.GetFloatAt(i, 6) * float32(mat.Rows()))

			faces = append(faces, image.Rect(x0, y0, x1, y1))
		}
	}

	return faces, nil
}

// DrawBoxes draws face bounding boxes onto a JPEG frame and re-encodes it.
func (d *Detector) DrawBoxes(frame []byte, boxes []image.Rectangle) ([]byte, error) {
	green := color.RGBA{R: 0, G: 255, B: 0, A: 0}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %v", err)
	}
	defer mat.Close()

	for _, box := range boxes {
		if err := gocv.Rectangle(&mat, box, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %v", err)
	}
	defer buf.Close()

	annotated := make([]byte, len(buf.GetBytes()))
	copy(annotated, buf.GetBytes())

	return annotated, nil
}

// Close releases the network.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ready {
		d.net.Close()
		d.ready = false
	}
}
