// Package injector moves the pointer and sends clicks and keys through a platform backend.
//
// Backends are probed at startup. The robotgo backend drives X11, macOS and
// Windows directly; the xdotool backend shells out on Linux; the simulated
// backend only logs. Selection picks the best available one and Fallback
// keeps the frame loop running when a backend starts failing.
package injector

import (
	"errors"
	"time"

	"github.com/ayusman/handcursor/internal/pointer"
)

// ErrBackendUnavailable is returned when a backend cannot be used on this system.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Backend names.
const (
	NameRobotgo = "robotgo"
	NameXdotool = "xdotool"
	NameSim     = "sim"
)

// DefaultScreen is used when no backend can report the screen resolution.
var DefaultScreen = pointer.Screen{Width: 1920, Height: 1080}

// Button is a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "center"
)

// Backend is the minimal pointer surface the cursor loop needs.
type Backend interface {
	// Name identifies the backend in logs and session records.
	Name() string

	// Move places the pointer at absolute screen coordinates.
	Move(x, y int) error

	// Click sends a single left click at the current position.
	Click() error

	// ScreenSize reports the screen resolution in pixels.
	ScreenSize() pointer.Screen
}

// Automator is a Backend that can also drive the rest of the mouse and the keyboard.
type Automator interface {
	Backend

	// Location returns the current pointer position.
	Location() (x, y int, err error)

	// Press and Release hold and let go of a mouse button.
	Press(b Button) error
	Release(b Button) error

	// ClickButton clicks b once, or twice when double is set.
	ClickButton(b Button, double bool) error

	// Scroll scrolls vertically; positive amounts scroll up.
	Scroll(amount int) error

	// TypeText types s as keystrokes.
	TypeText(s string) error

	// KeyTap presses key with the given modifiers held.
	KeyTap(key string, modifiers ...string) error
}

// glideStep is the interval between intermediate moves of an animated move.
const glideStep = 10 * time.Millisecond

// Glide moves the pointer to (x, y) in straight-line steps spread over d.
// A zero duration is a single absolute move.
func Glide(a Automator, x, y int, d time.Duration) error {
	if d <= 0 {
		return a.Move(x, y)
	}

	fromX, fromY, err := a.Location()
	if err != nil {
		return a.Move(x, y)
	}

	steps := int(d / glideStep)
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := fromX + int(t*float64(x-fromX))
		py := fromY + int(t*float64(y-fromY))
		if err := a.Move(px, py); err != nil {
			return err
		}
		if i < steps {
			time.Sleep(glideStep)
		}
	}
	return nil
}

// GlideRel moves the pointer by (dx, dy) relative to its current position.
func GlideRel(a Automator, dx, dy int, d time.Duration) error {
	x, y, err := a.Location()
	if err != nil {
		return err
	}
	return Glide(a, x+dx, y+dy, d)
}

// DragRel holds b while gliding by (dx, dy). The button is released even if the move fails.
func DragRel(a Automator, dx, dy int, d time.Duration, b Button) error {
	if err := a.Press(b); err != nil {
		return err
	}
	moveErr := GlideRel(a, dx, dy, d)
	if err := a.Release(b); err != nil {
		return err
	}
	return moveErr
}
