package detector

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
type MediaPipeDetector struct {
	svc *service
}

// NewMediaPipeDetector creates a hand detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	svc, err := newService(modeHands, config)
	if err != nil {
		return nil, err
	}
	return &MediaPipeDetector{svc: svc}, nil
}

func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	var reply handsReply
	if err := d.svc.request(frame, &reply); err != nil {
		return nil, err
	}
	return reply.landmarks(), nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	return d.svc.close()
}

// MediaPipeFaceDetector implements FaceDetector with the same service in face mode.
type MediaPipeFaceDetector struct {
	svc *service
}

func NewMediaPipeFaceDetector(config Config) (*MediaPipeFaceDetector, error) {
	svc, err := newService(modeFaces, config)
	if err != nil {
		return nil, err
	}
	return &MediaPipeFaceDetector{svc: svc}, nil
}

func (d *MediaPipeFaceDetector) DetectFaces(frame *gocv.Mat) ([]FaceDetection, error) {
	var reply facesReply
	if err := d.svc.request(frame, &reply); err != nil {
		return nil, err
	}
	return reply.detections(frame.Cols(), frame.Rows()), nil
}

func (d *MediaPipeFaceDetector) Close() error {
	return d.svc.close()
}

type handsReply struct {
	Hands []jsonHand `json:"hands"`
}

func (r handsReply) landmarks() []HandLandmarks {
	result := make([]HandLandmarks, len(r.Hands))
	for i, h := range r.Hands {
		result[i] = h.toHandLandmarks()
	}
	return result
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points)
	return lm
}

type facesReply struct {
	Faces []jsonFace `json:"faces"`
}

// jsonFace is a relative bounding box; all coordinates are in [0,1].
type jsonFace struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w"`
	H         float64 `json:"h"`
	Score     float64 `json:"score"`
	Keypoints []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"keypoints"`
}

func (r facesReply) detections(width, height int) []FaceDetection {
	px := func(x, y float64) image.Point {
		return image.Point{
			X: int(math.Round(x * float64(width))),
			Y: int(math.Round(y * float64(height))),
		}
	}

	result := make([]FaceDetection, 0, len(r.Faces))
	for _, f := range r.Faces {
		d := FaceDetection{
			Rect:       image.Rectangle{Min: px(f.X, f.Y), Max: px(f.X+f.W, f.Y+f.H)},
			Confidence: f.Score,
		}
		for _, k := range f.Keypoints {
			d.Keypoints = append(d.Keypoints, px(k.X, k.Y))
		}
		result = append(result, d)
	}
	return result
}
