package app

import (
	"context"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/detector"
	"github.com/ayusman/handcursor/internal/gesture"
	"github.com/ayusman/handcursor/internal/overlay"
	"github.com/ayusman/handcursor/internal/store"
)

// GestureStableFrames is how many frames a pose must hold before it is
// reported as a gesture change.
const GestureStableFrames = 3

// GestureOptions tune the gesture preview.
type GestureOptions struct {
	ProcScale float64
	// Motion skips detection on still frames and reuses the last hands. Nil detects every frame.
	Motion *capture.MotionGate
}

// GestureMessage is published when the settled gesture changes.
type GestureMessage struct {
	Type    string `json:"type"`
	Gesture string `json:"gesture"`
	TS      int64  `json:"ts"`
}

// Gestures labels every visible hand with its rule-based gesture.
type Gestures struct {
	deps     Deps
	opts     GestureOptions
	detector detector.Detector
	tracker  *gesture.Tracker
	rec      *recorder
	last     []detector.HandLandmarks
	now      func() time.Time

	// OnGesture is called when the first hand settles on a new gesture.
	OnGesture func(name gesture.Name)
}

// NewGestures builds the gesture preview loop.
func NewGestures(deps Deps, det detector.Detector, opts GestureOptions) *Gestures {
	g := &Gestures{
		deps:     deps,
		opts:     opts,
		detector: det,
		rec:      &recorder{},
		now:      time.Now,
	}
	g.tracker = gesture.NewTracker(GestureStableFrames)
	g.tracker.OnChange = g.changed
	return g
}

// Run processes frames until the camera ends, ctx is cancelled or the quit key is pressed.
func (g *Gestures) Run(ctx context.Context) error {
	g.rec = startRecorder(g.deps.Store, store.ModeGesture, "", "")
	defer g.rec.finish()
	return g.deps.run(ctx, g.frame)
}

// Counters returns the running totals.
func (g *Gestures) Counters() store.Counters {
	return g.rec.counters
}

// Current returns the settled gesture of the first hand.
func (g *Gestures) Current() gesture.Name {
	return g.tracker.Current()
}

func (g *Gestures) frame(raw gocv.Mat) bool {
	g.rec.counters.Frames++

	display := capture.Flip(raw)
	defer display.Close()

	hands := g.detect(display)
	names := g.Label(hands)
	for i, h := range hands {
		overlay.Hand(&display, h)
		overlay.GestureLabel(&display, i, names[i])
	}

	return g.deps.present(display)
}

// detect runs the detector unless the motion gate holds the frame back.
func (g *Gestures) detect(display gocv.Mat) []detector.HandLandmarks {
	if g.opts.Motion != nil {
		if pass, _ := g.opts.Motion.Pass(display); !pass {
			return g.last
		}
	}

	proc := capture.Downscale(display, g.opts.ProcScale)
	defer proc.Close()

	hands, err := g.detector.Detect(&proc)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return nil
	}
	if len(hands) > 0 {
		g.rec.counters.Detections++
	}
	g.last = hands
	return hands
}

// Label classifies each hand and feeds the first one to the tracker.
func (g *Gestures) Label(hands []detector.HandLandmarks) []gesture.Name {
	names := make([]gesture.Name, len(hands))
	for i, h := range hands {
		names[i] = gesture.Classify(h)
	}

	var first gesture.Name
	if len(names) > 0 {
		first = names[0]
	}
	g.tracker.Observe(first)
	return names
}

func (g *Gestures) changed(name gesture.Name) {
	now := g.now()
	log.Printf("Gesture: %s", name)
	g.rec.event(store.Event{Kind: store.EventGesture, Label: string(name), CreatedAt: now})
	g.deps.publish(GestureMessage{Type: "gesture", Gesture: string(name), TS: now.UnixMilli()})
	if g.OnGesture != nil {
		g.OnGesture(name)
	}
}
