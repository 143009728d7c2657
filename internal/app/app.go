// Package app runs the demo loops: the hand cursor, the gesture and face
// previews, and the automation tour.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/store"
)

// MaxReadFailures is the number of consecutive failed reads after which a
// loop gives up on the camera.
const MaxReadFailures = 100

// quitKey closes the preview window.
const quitKey = 'q'

// Display shows preview frames and reports key presses.
type Display interface {
	Show(img gocv.Mat)
	// WaitKey waits up to delay milliseconds and returns the pressed key, or -1.
	WaitKey(delay int) int
	Close() error
}

// Window is a Display backed by a HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a preview window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

func (w *Window) Show(img gocv.Mat)     { w.win.IMShow(img) }
func (w *Window) WaitKey(delay int) int { return w.win.WaitKey(delay) }
func (w *Window) Close() error          { return w.win.Close() }

// Publisher receives live loop output for the status server.
type Publisher interface {
	// Publish sends a JSON-encodable message to subscribers.
	Publish(msg any)
	// Frame offers the latest annotated preview frame.
	Frame(img gocv.Mat)
}

// Toggle is a concurrency-safe on/off switch shared with the tray.
type Toggle struct {
	on atomic.Bool
}

// NewToggle returns a Toggle in the given state.
func NewToggle(on bool) *Toggle {
	t := &Toggle{}
	t.on.Store(on)
	return t
}

// On reports whether the toggle is on. A nil Toggle is always on.
func (t *Toggle) On() bool {
	if t == nil {
		return true
	}
	return t.on.Load()
}

// Set switches the toggle.
func (t *Toggle) Set(on bool) {
	t.on.Store(on)
}

// Deps are the collaborators shared by every frame loop.
type Deps struct {
	Camera capture.Camera
	// Display is nil when running headless.
	Display Display
	// Store records sessions and events. Nil disables recording.
	Store *store.Store
	// Publisher is nil when the status server is off.
	Publisher Publisher
	// Enabled pauses pointer injection when off. Nil means always enabled.
	Enabled *Toggle
}

// frameFunc handles one frame. Returning false stops the loop.
type frameFunc func(frame gocv.Mat) bool

// run reads frames until the camera runs dry, the context is cancelled,
// fn asks to stop, or the camera fails too many times in a row.
func (d Deps) run(ctx context.Context, fn frameFunc) error {
	if d.Camera == nil {
		return capture.ErrCameraNotOpen
	}
	if !d.Camera.IsOpen() {
		if err := d.Camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
	}
	defer func() {
		if err := d.Camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := d.Camera.ReadFrame()
		switch {
		case errors.Is(err, capture.ErrNoMoreFrames):
			return nil
		case errors.Is(err, capture.ErrCameraNotOpen):
			return err
		case err != nil:
			failures++
			if failures >= MaxReadFailures {
				return fmt.Errorf("camera stopped delivering frames: %w", err)
			}
			log.Println("Ignoring empty camera frame.")
			continue
		}
		failures = 0

		keep := fn(*frame)
		frame.Close()
		if !keep {
			return nil
		}
	}
}

// present hands img to the publisher and the preview window. It returns
// false once the quit key is pressed.
func (d Deps) present(img gocv.Mat) bool {
	if d.Publisher != nil {
		d.Publisher.Frame(img)
	}
	if d.Display == nil {
		return true
	}
	d.Display.Show(img)
	return d.Display.WaitKey(1)&0xFF != quitKey
}

func (d Deps) publish(msg any) {
	if d.Publisher != nil {
		d.Publisher.Publish(msg)
	}
}
