package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/ayusman/handcursor/internal/injector"
	"github.com/ayusman/handcursor/internal/pointer"
	"github.com/ayusman/handcursor/internal/store"
)

// ErrFailSafe is returned when the pointer is parked in the top-left corner between tour steps.
var ErrFailSafe = errors.New("fail-safe triggered: pointer moved to the top-left corner")

// DragSide is the edge length of the dragged square.
const DragSide = 60

// TourOptions pace the tour. Zero durations run steps back to back.
type TourOptions struct {
	// Pause follows every step.
	Pause time.Duration
	// Move is the duration of each glide along the square path.
	Move time.Duration
	// Rel is the duration of relative moves and drags.
	Rel time.Duration
	// TypeDelay gives the user time to focus a text field before typing.
	TypeDelay time.Duration
	// KeyInterval separates individual key taps.
	KeyInterval time.Duration
	// Screenshot is where the final screenshot is written. Empty skips it.
	Screenshot string
}

// DefaultTourOptions returns the pacing used by the tour command.
func DefaultTourOptions() TourOptions {
	return TourOptions{
		Pause:       500 * time.Millisecond,
		Move:        500 * time.Millisecond,
		Rel:         400 * time.Millisecond,
		TypeDelay:   2 * time.Second,
		KeyInterval: 50 * time.Millisecond,
		Screenshot:  "tour_screenshot.png",
	}
}

// typedKeys is tapped one key at a time after the text is typed.
var typedKeys = []string{"h", "e", "l", "l", "o", "space", "b", "a", "c", "k", "space", "t", "o", "space", "y", "o", "u", "enter"}

// Tour walks through the mouse and keyboard surface of an Automator.
type Tour struct {
	auto  injector.Automator
	opts  TourOptions
	store *store.Store
	rec   *recorder

	// Capture grabs the screen for the screenshot step. Defaults to the primary display.
	Capture func() (image.Image, error)
}

// NewTour builds a tour that drives a. A nil store disables recording.
func NewTour(a injector.Automator, st *store.Store, opts TourOptions) *Tour {
	return &Tour{
		auto:    a,
		opts:    opts,
		store:   st,
		rec:     &recorder{},
		Capture: captureDisplay,
	}
}

type tourStep struct {
	name string
	run  func(ctx context.Context) error
}

// Run executes every step in order. It stops early when ctx is cancelled or
// the fail-safe corner is hit.
func (t *Tour) Run(ctx context.Context) error {
	t.rec = startRecorder(t.store, store.ModeTour, t.auto.Name(), "")
	defer t.rec.finish()

	screen := t.auto.ScreenSize()
	log.Printf("Screen size: %dx%d", screen.Width, screen.Height)
	if x, y, err := t.auto.Location(); err == nil {
		log.Printf("Initial mouse position: (%d, %d)", x, y)
	}
	log.Printf("On screen (10, 10): %t", onScreen(screen, 10, 10))

	// The first step moves away from wherever the pointer starts, so the
	// fail-safe is only checked from the second step on.
	for i, step := range t.steps() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("tour aborted: %w", err)
		}
		if i > 0 && t.atCorner() {
			log.Println("Fail-safe triggered (pointer moved to top-left). Aborting safely.")
			return ErrFailSafe
		}

		log.Println(step.name)
		if err := step.run(ctx); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("tour aborted: %w", ctx.Err())
			}
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if err := sleepCtx(ctx, t.opts.Pause); err != nil {
			return fmt.Errorf("tour aborted: %w", err)
		}
	}

	log.Println("Tour complete.")
	return nil
}

// Counters returns the moves and clicks performed so far.
func (t *Tour) Counters() store.Counters {
	return t.rec.counters
}

func (t *Tour) steps() []tourStep {
	screen := t.auto.ScreenSize()
	cx, cy := screen.Width/2, screen.Height/2
	path := []pointer.Point{
		{X: cx, Y: cy},
		{X: cx + 100, Y: cy},
		{X: cx + 100, Y: cy + 100},
		{X: cx, Y: cy + 100},
		{X: cx, Y: cy},
	}

	return []tourStep{
		{fmt.Sprintf("Moving through %v", path), func(ctx context.Context) error {
			for _, p := range path {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := injector.Glide(t.auto, p.X, p.Y, t.opts.Move); err != nil {
					return err
				}
				t.rec.counters.Moves++
			}
			return nil
		}},
		{"Relative move by (+50, -30)", func(context.Context) error {
			t.rec.counters.Moves++
			return injector.GlideRel(t.auto, 50, -30, t.opts.Rel)
		}},
		{"Single left click at current position", func(context.Context) error {
			return t.click(injector.ButtonLeft, false)
		}},
		{"Right click", func(context.Context) error {
			return t.click(injector.ButtonRight, false)
		}},
		{"Double click", func(context.Context) error {
			return t.click(injector.ButtonLeft, true)
		}},
		{"Dragging a small square", func(ctx context.Context) error {
			for _, d := range [][2]int{{DragSide, 0}, {0, DragSide}, {-DragSide, 0}, {0, -DragSide}} {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := injector.DragRel(t.auto, d[0], d[1], t.opts.Rel, injector.ButtonLeft); err != nil {
					return err
				}
				t.rec.counters.Moves++
			}
			return nil
		}},
		{"Scroll up 500", func(context.Context) error {
			return t.auto.Scroll(500)
		}},
		{"Scroll down 500", func(context.Context) error {
			return t.auto.Scroll(-500)
		}},
		{fmt.Sprintf("Typing demo in %s... (focus a text field now)", t.opts.TypeDelay), func(ctx context.Context) error {
			if err := sleepCtx(ctx, t.opts.TypeDelay); err != nil {
				return err
			}
			if err := t.auto.TypeText("Hello world!\n"); err != nil {
				return err
			}
			for _, k := range typedKeys {
				if err := t.auto.KeyTap(k); err != nil {
					return err
				}
				if err := sleepCtx(ctx, t.opts.KeyInterval); err != nil {
					return err
				}
			}
			return nil
		}},
		{"Sending hotkeys: Ctrl+A, then Ctrl+C", func(context.Context) error {
			if err := t.auto.KeyTap("a", "ctrl"); err != nil {
				return err
			}
			return t.auto.KeyTap("c", "ctrl")
		}},
		{"Taking screenshot", func(context.Context) error {
			t.screenshot()
			return nil
		}},
	}
}

func (t *Tour) click(b injector.Button, double bool) error {
	if err := t.auto.ClickButton(b, double); err != nil {
		return err
	}
	t.rec.counters.Clicks++

	x, y, _ := t.auto.Location()
	label := string(b)
	if double {
		label = "double " + label
	}
	t.rec.event(store.Event{Kind: store.EventClick, X: x, Y: y, Label: label, CreatedAt: time.Now()})
	return nil
}

// screenshot failures are reported but do not fail the tour.
func (t *Tour) screenshot() {
	if t.opts.Screenshot == "" || t.Capture == nil {
		return
	}
	if err := saveScreenshot(t.opts.Screenshot, t.Capture); err != nil {
		log.Printf("Screenshot unavailable: %v", err)
		return
	}
	log.Printf("Saved screenshot to %s", t.opts.Screenshot)
}

func (t *Tour) atCorner() bool {
	x, y, err := t.auto.Location()
	return err == nil && x == 0 && y == 0
}

func onScreen(s pointer.Screen, x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}

func saveScreenshot(path string, capture func() (image.Image, error)) error {
	img, err := capture()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func captureDisplay() (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capture display: %v", r)
		}
	}()
	if screenshot.NumActiveDisplays() < 1 {
		return nil, errors.New("no active display")
	}
	return screenshot.CaptureDisplay(0)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
