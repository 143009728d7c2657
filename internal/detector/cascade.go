package detector

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

// CascadeFile is the OpenCV frontal face Haar cascade.
const CascadeFile = "haarcascade_frontalface_default.xml"

// ErrCascadeNotFound is returned when no cascade file can be located.
var ErrCascadeNotFound = errors.New(CascadeFile + " not found")

// CascadeFaceDetector finds faces with an OpenCV Haar cascade. It needs no
// Python service, at the cost of no confidence scores or keypoints.
type CascadeFaceDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	minSize    image.Point
}

// NewCascadeFaceDetector loads the cascade at path, or searches the usual
// locations when path is empty.
func NewCascadeFaceDetector(path string) (*CascadeFaceDetector, error) {
	if path == "" {
		path = FindCascade()
	}
	if path == "" {
		return nil, ErrCascadeNotFound
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("error reading cascade file: %s", path)
	}

	return &CascadeFaceDetector{
		classifier: classifier,
		minSize:    image.Point{X: 40, Y: 40},
	}, nil
}

func (d *CascadeFaceDetector) DetectFaces(frame *gocv.Mat) ([]FaceDetection, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.EqualizeHist(gray, &gray)

	d.mu.Lock()
	rects := d.classifier.DetectMultiScaleWithParams(gray, 1.1, 5, 0, d.minSize, image.Point{})
	d.mu.Unlock()

	faces := make([]FaceDetection, len(rects))
	for i, r := range rects {
		faces[i] = FaceDetection{Rect: r, Confidence: 1}
	}
	return faces, nil
}

func (d *CascadeFaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}

// FindCascade returns the first cascade file found in the working
// directory, the data directory or the OpenCV install locations.
func FindCascade() string {
	return firstExisting(
		filepath.Join("data", CascadeFile),
		filepath.Join(os.Getenv("HOME"), ".handcursor", CascadeFile),
		filepath.Join("/usr/share/opencv4/haarcascades", CascadeFile),
		filepath.Join("/usr/local/share/opencv4/haarcascades", CascadeFile),
		filepath.Join("/opt/homebrew/share/opencv4/haarcascades", CascadeFile),
	)
}
