// Package capture reads webcam frames through GoCV (OpenCV) and prepares
// them for the detectors.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings.
const (
	DefaultFPS    = 30
	DefaultWidth  = 960
	DefaultHeight = 540
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEmptyFrame is returned when the device delivered a frame with no pixels.
	// Loops skip such frames and keep reading.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options selects the capture device and the resolution requested from it.
// Zero values fall back to the defaults.
type Options struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	return o
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera for the given options. The device is not
// opened until Open is called.
func NewCamera(opts Options) Camera {
	return &cameraImpl{opts: opts.withDefaults()}
}

// Open opens the device and requests the configured resolution and frame
// rate. Drivers may ignore the request; callers should read the actual size
// from the frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("could not open camera %d: %w", c.opts.DeviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("could not open camera %d", c.opts.DeviceID)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))

	c.capture = capture
	c.running = true
	return nil
}

func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	return &mat, nil
}

// SetFPS changes the requested frame rate. Values <= 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.FPS
}

func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
