package app

import (
	"context"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/detector"
	"github.com/ayusman/handcursor/internal/overlay"
	"github.com/ayusman/handcursor/internal/store"
)

// FaceOptions tune the face preview.
type FaceOptions struct {
	ProcScale float64
	Motion    *capture.MotionGate
}

// FaceMessage is published when the number of visible faces changes.
type FaceMessage struct {
	Type  string  `json:"type"`
	Count int     `json:"count"`
	Best  float64 `json:"best"`
	TS    int64   `json:"ts"`
}

// Faces boxes every detected face and captions the frame while one is visible.
type Faces struct {
	deps     Deps
	opts     FaceOptions
	detector detector.FaceDetector
	rec      *recorder
	last     []detector.FaceDetection
	count    int
	now      func() time.Time
}

// NewFaces builds the face preview loop.
func NewFaces(deps Deps, det detector.FaceDetector, opts FaceOptions) *Faces {
	return &Faces{
		deps:     deps,
		opts:     opts,
		detector: det,
		rec:      &recorder{},
		now:      time.Now,
	}
}

// Run processes frames until the camera ends, ctx is cancelled or the quit key is pressed.
func (f *Faces) Run(ctx context.Context) error {
	f.rec = startRecorder(f.deps.Store, store.ModeFace, "", "")
	defer f.rec.finish()
	return f.deps.run(ctx, f.frame)
}

// Counters returns the running totals.
func (f *Faces) Counters() store.Counters {
	return f.rec.counters
}

func (f *Faces) frame(raw gocv.Mat) bool {
	f.rec.counters.Frames++

	display := capture.Flip(raw)
	defer display.Close()

	faces := f.detect(display)
	overlay.Faces(&display, faces)
	overlay.FaceCaptionAt(&display, faces)
	f.observe(faces)

	return f.deps.present(display)
}

// detect finds faces on the downscaled frame and maps them back to display coordinates.
func (f *Faces) detect(display gocv.Mat) []detector.FaceDetection {
	if f.opts.Motion != nil {
		if pass, _ := f.opts.Motion.Pass(display); !pass {
			return f.last
		}
	}

	proc := capture.Downscale(display, f.opts.ProcScale)
	defer proc.Close()

	faces, err := f.detector.DetectFaces(&proc)
	if err != nil {
		log.Printf("Error detecting faces: %v", err)
		return nil
	}
	if capture.ScaleApplies(f.opts.ProcScale) {
		scaled := make([]detector.FaceDetection, len(faces))
		for i, face := range faces {
			scaled[i] = face.Scale(f.opts.ProcScale)
		}
		faces = scaled
	}
	if len(faces) > 0 {
		f.rec.counters.Detections++
	}
	f.last = faces
	return faces
}

// observe records an event whenever the face count changes.
func (f *Faces) observe(faces []detector.FaceDetection) {
	if len(faces) == f.count {
		return
	}
	f.count = len(faces)

	now := f.now()
	var best float64
	for _, face := range faces {
		if face.Confidence > best {
			best = face.Confidence
		}
	}

	e := store.Event{Kind: store.EventFace, Value: float64(f.count), CreatedAt: now}
	if f.count > 0 {
		e.X, e.Y = faces[0].Rect.Min.X, faces[0].Rect.Min.Y
		e.Label = overlay.FaceCaption
	}
	f.rec.event(e)
	f.deps.publish(FaceMessage{Type: "faces", Count: f.count, Best: best, TS: now.UnixMilli()})
}
