package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// FaceDetector finds faces in a frame.
type FaceDetector interface {
	// DetectFaces returns the faces found in frame, in frame pixel coordinates.
	DetectFaces(frame *gocv.Mat) ([]FaceDetection, error)

	Close() error
}

// Config holds configuration options for the MediaPipe service.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeout stops the service after this long without a request.
	IdleTimeout time.Duration

	// Script and Python override service discovery when set.
	Script string
	Python string
}

// DefaultConfig returns the cursor settings: one hand, 0.7 detection and
// 0.5 tracking confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}

// GestureConfig returns the gesture demo settings: up to two hands at 0.5 confidence.
func GestureConfig() Config {
	c := DefaultConfig()
	c.MaxHands = 2
	c.MinConfidence = 0.5
	return c
}

// FaceConfig returns the face demo settings.
func FaceConfig() Config {
	c := DefaultConfig()
	c.MinConfidence = 0.5
	return c
}
