// Package pointer turns per-frame hand landmark positions into cursor moves and pinch clicks.
//
// The smoother is an exponential moving average whose factor grows with the
// speed of the hand, so small jitter stays damped while fast sweeps keep up.
// Moves are gated by a pixel deadzone and a maximum update rate; clicks are
// gated by a pinch distance threshold and a cooldown.
package pointer

import (
	"math"
	"time"
)

// Default tunables.
const (
	DefaultBaseAlpha      = 0.25
	DefaultAccelGain      = 0.35
	DefaultDeadzonePx     = 2
	DefaultMaxUpdateHz    = 120.0
	DefaultPinchThreshold = 0.04
	DefaultClickCooldown  = 350 * time.Millisecond
)

// Config holds the smoothing and gating tunables.
type Config struct {
	// BaseAlpha is the interpolation factor at zero speed, in (0, 1].
	BaseAlpha float64

	// AccelGain scales how much normalized speed adds to the factor.
	AccelGain float64

	// DeadzonePx is the per-axis displacement (pixels) a move must reach.
	DeadzonePx int

	// MaxUpdateHz caps the emitted move rate. Zero or less disables the cap.
	MaxUpdateHz float64

	// PinchThreshold is the normalized thumb-index distance below which a pinch clicks.
	PinchThreshold float64

	// PinchRelease is the distance the pinch must open past before the next
	// click is allowed. Values not greater than PinchThreshold disable it.
	PinchRelease float64

	// ClickCooldown is the minimum time between two accepted clicks.
	ClickCooldown time.Duration
}

// DefaultConfig returns a Config with the default tunables.
func DefaultConfig() Config {
	return Config{
		BaseAlpha:      DefaultBaseAlpha,
		AccelGain:      DefaultAccelGain,
		DeadzonePx:     DefaultDeadzonePx,
		MaxUpdateHz:    DefaultMaxUpdateHz,
		PinchThreshold: DefaultPinchThreshold,
		ClickCooldown:  DefaultClickCooldown,
	}
}

// Point is a screen-space position in integer pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec2 is a normalized image-space position, both axes in [0, 1].
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Screen is the output resolution in pixels.
type Screen struct {
	Width  int
	Height int
}

// ToScreen maps a normalized position onto the screen, truncating to whole pixels.
func (s Screen) ToScreen(v Vec2) Point {
	return Point{
		X: int(v.X * float64(s.Width)),
		Y: int(v.Y * float64(s.Height)),
	}
}

func (s Screen) longSide() float64 {
	if s.Width > s.Height {
		return float64(s.Width)
	}
	return float64(s.Height)
}

// Alpha returns the adaptive interpolation factor for a displacement of the given speed.
func (c Config) Alpha(speed float64, screen Screen) float64 {
	long := screen.longSide()
	if long <= 0 {
		return math.Min(1, c.BaseAlpha)
	}
	return math.Min(1, c.BaseAlpha+c.AccelGain*(speed/long))
}

// Smooth moves prev toward target by the adaptive factor and rounds to pixels.
// It returns the new position and the factor that was applied.
func (c Config) Smooth(prev, target Point, screen Screen) (Point, float64) {
	dx := float64(target.X - prev.X)
	dy := float64(target.Y - prev.Y)
	alpha := c.Alpha(math.Hypot(dx, dy), screen)

	return Point{
		X: prev.X + int(math.Round(alpha*dx)),
		Y: prev.Y + int(math.Round(alpha*dy)),
	}, alpha
}

// minInterval is the shortest allowed gap between emitted moves.
func (c Config) minInterval() time.Duration {
	if c.MaxUpdateHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.MaxUpdateHz)
}

// outsideDeadzone reports whether next is far enough from last on either axis.
func (c Config) outsideDeadzone(last, next Point) bool {
	return abs(next.X-last.X) >= c.DeadzonePx || abs(next.Y-last.Y) >= c.DeadzonePx
}

// PinchDistance is the Euclidean distance between thumb and index tips in normalized units.
func PinchDistance(thumb, index Vec2) float64 {
	return math.Hypot(thumb.X-index.X, thumb.Y-index.Y)
}

// State is the per-loop pointer state. It is owned by a single frame loop.
type State struct {
	// Pos is the smoothing origin: the last smoothed position, emitted or not.
	Pos Point
	// Emitted is the last position handed to the backend.
	Emitted Point
	// LastMove is when Emitted was last updated.
	LastMove time.Time
	// LastClick is when the last click was accepted.
	LastClick time.Time

	disarmed bool
}

// NewState returns a State whose smoothing origin and emitted position are origin.
func NewState(origin Point) *State {
	return &State{Pos: origin, Emitted: origin}
}

// Sample is one frame's worth of input.
type Sample struct {
	Index Vec2
	Thumb Vec2
	Time  time.Time
}

// Decision is what the caller should do for one frame.
type Decision struct {
	Target Point   `json:"target"`
	Pos    Point   `json:"pos"`
	Alpha  float64 `json:"alpha"`
	Move   bool    `json:"move"`
	Click  bool    `json:"click"`
	Pinch  float64 `json:"pinch"`
}

// Step runs the smoother and both gates for one sample and advances st.
func Step(cfg Config, screen Screen, st *State, s Sample) Decision {
	target := screen.ToScreen(s.Index)
	pos, alpha := cfg.Smooth(st.Pos, target, screen)

	d := Decision{
		Target: target,
		Pos:    pos,
		Alpha:  alpha,
	}

	if cfg.outsideDeadzone(st.Emitted, pos) && s.Time.Sub(st.LastMove) >= cfg.minInterval() {
		d.Move = true
		st.Emitted = pos
		st.LastMove = s.Time
	}
	st.Pos = pos

	d.Pinch = PinchDistance(s.Thumb, s.Index)
	d.Click = clickGate(cfg, st, d.Pinch, s.Time)

	return d
}

// clickGate decides whether this pinch distance produces a click.
func clickGate(cfg Config, st *State, dist float64, now time.Time) bool {
	hysteresis := cfg.PinchRelease > cfg.PinchThreshold
	if hysteresis && st.disarmed {
		if dist > cfg.PinchRelease {
			st.disarmed = false
		}
		return false
	}

	if dist < cfg.PinchThreshold && now.Sub(st.LastClick) > cfg.ClickCooldown {
		st.LastClick = now
		st.disarmed = hysteresis
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
