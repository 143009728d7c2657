package app

import (
	"context"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/detector"
	"github.com/ayusman/handcursor/internal/injector"
	"github.com/ayusman/handcursor/internal/overlay"
	"github.com/ayusman/handcursor/internal/pointer"
	"github.com/ayusman/handcursor/internal/store"
)

// CursorOptions tune the cursor loop.
type CursorOptions struct {
	Pointer      pointer.Config
	ProcScale    float64
	DrawOverlays bool
	// RecordMoves stores every emitted move as an event. Clicks are always stored.
	RecordMoves bool
	// Status is the backend status saved with the session.
	Status string
}

// PointerMessage is published once per processed hand.
type PointerMessage struct {
	Type  string  `json:"type"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Move  bool    `json:"move"`
	Click bool    `json:"click"`
	Pinch float64 `json:"pinch"`
	Alpha float64 `json:"alpha"`
	TS    int64   `json:"ts"`
}

// Cursor drives the pointer from the index fingertip and clicks on a pinch.
type Cursor struct {
	deps     Deps
	opts     CursorOptions
	detector detector.Detector
	backend  injector.Backend
	screen   pointer.Screen
	state    *pointer.State
	rec      *recorder
	now      func() time.Time

	// OnClick is called after every injected click.
	OnClick func(p pointer.Point)
}

// NewCursor builds the cursor loop. The smoothing origin is the current
// pointer position when the backend can report it, otherwise (0, 0).
func NewCursor(deps Deps, det detector.Detector, backend injector.Backend, opts CursorOptions) *Cursor {
	origin := pointer.Point{}
	if a, ok := backend.(injector.Automator); ok {
		if x, y, err := a.Location(); err == nil {
			origin = pointer.Point{X: x, Y: y}
		}
	}

	return &Cursor{
		deps:     deps,
		opts:     opts,
		detector: det,
		backend:  backend,
		screen:   backend.ScreenSize(),
		state:    pointer.NewState(origin),
		rec:      &recorder{},
		now:      time.Now,
	}
}

// Run processes camera frames until the camera ends, ctx is cancelled or
// the quit key is pressed.
func (c *Cursor) Run(ctx context.Context) error {
	c.rec = startRecorder(c.deps.Store, store.ModeCursor, c.backend.Name(), c.opts.Status)
	defer c.rec.finish()

	log.Printf("Cursor loop started: screen %dx%d, backend %s", c.screen.Width, c.screen.Height, c.backend.Name())
	err := c.deps.run(ctx, c.frame)
	log.Printf("Cursor loop stopped after %d frames, %d moves, %d clicks",
		c.rec.counters.Frames, c.rec.counters.Moves, c.rec.counters.Clicks)
	return err
}

// Counters returns the running totals.
func (c *Cursor) Counters() store.Counters {
	return c.rec.counters
}

func (c *Cursor) frame(raw gocv.Mat) bool {
	c.rec.counters.Frames++

	display := capture.Flip(raw)
	defer display.Close()

	proc := capture.Downscale(display, c.opts.ProcScale)
	hands, err := c.detector.Detect(&proc)
	proc.Close()

	if err != nil {
		log.Printf("Error detecting hands: %v", err)
	} else if len(hands) > 0 {
		c.rec.counters.Detections++
		hand := hands[0]
		if c.opts.DrawOverlays {
			overlay.Hand(&display, hand)
		}
		if c.deps.Enabled.On() {
			d := c.Process(hand)
			if c.opts.DrawOverlays {
				overlay.CursorStatus(&display, d)
			}
		}
	}

	return c.deps.present(display)
}

// Process steps the pointer with one hand and injects the outcome.
// Backend errors are logged; the loop keeps going.
func (c *Cursor) Process(hand detector.HandLandmarks) pointer.Decision {
	index := hand.Points[detector.IndexTip]
	thumb := hand.Points[detector.ThumbTip]
	now := c.now()

	d := pointer.Step(c.opts.Pointer, c.screen, c.state, pointer.Sample{
		Index: pointer.Vec2{X: index.X, Y: index.Y},
		Thumb: pointer.Vec2{X: thumb.X, Y: thumb.Y},
		Time:  now,
	})

	if d.Move {
		if err := c.backend.Move(d.Pos.X, d.Pos.Y); err != nil {
			log.Printf("Move to (%d, %d) failed: %v", d.Pos.X, d.Pos.Y, err)
		}
		c.rec.counters.Moves++
		if c.opts.RecordMoves {
			c.rec.event(store.Event{Kind: store.EventMove, X: d.Pos.X, Y: d.Pos.Y, CreatedAt: now})
		}
	}

	if d.Click {
		if err := c.backend.Click(); err != nil {
			log.Printf("Click failed: %v", err)
		}
		c.rec.counters.Clicks++
		c.rec.event(store.Event{
			Kind:      store.EventClick,
			X:         c.state.Emitted.X,
			Y:         c.state.Emitted.Y,
			Value:     d.Pinch,
			CreatedAt: now,
		})
		if c.OnClick != nil {
			c.OnClick(c.state.Emitted)
		}
	}

	c.deps.publish(PointerMessage{
		Type:  "pointer",
		X:     d.Pos.X,
		Y:     d.Pos.Y,
		Move:  d.Move,
		Click: d.Click,
		Pinch: d.Pinch,
		Alpha: d.Alpha,
		TS:    now.UnixMilli(),
	})
	return d
}
