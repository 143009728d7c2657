// Package gesture names static hand poses from which fingers are extended.
package gesture

import (
	"sync"

	"github.com/ayusman/handcursor/internal/detector"
)

// Name is a recognized hand pose, as shown on screen.
type Name string

const (
	Fist       Name = "Fist"
	OpenHand   Name = "Open Hand"
	Pointing   Name = "Pointing"
	PeaceSign  Name = "Peace Sign"
	TwoFingers Name = "Two Fingers"
	Unknown    Name = "Unknown"
)

// Fingers records which fingers are extended, ordered thumb, index, middle, ring, pinky.
type Fingers [detector.NumFingers]bool

// poses maps finger states to names. Anything else is Unknown.
var poses = map[Fingers]Name{
	{false, false, false, false, false}: Fist,
	{true, true, true, true, true}:      OpenHand,
	{false, true, false, false, false}:  Pointing,
	{true, true, false, false, false}:   PeaceSign,
	{false, true, true, false, false}:   TwoFingers,
}

// FingersUp reports which fingers are extended. The thumb counts as
// extended when its tip lies to the right of its IP joint in image space.
// Index, middle and ring count when the tip is above the DIP joint, the
// pinky when its tip is above the PIP joint. Image y grows downward.
func FingersUp(h detector.HandLandmarks) Fingers {
	p := h.Points
	return Fingers{
		p[detector.ThumbTip].X > p[detector.ThumbIP].X,
		p[detector.IndexTip].Y < p[detector.IndexDIP].Y,
		p[detector.MiddleTip].Y < p[detector.MiddleDIP].Y,
		p[detector.RingTip].Y < p[detector.RingDIP].Y,
		p[detector.PinkyTip].Y < p[detector.PinkyPIP].Y,
	}
}

// Classify names the pose of h.
func Classify(h detector.HandLandmarks) Name {
	if name, ok := poses[FingersUp(h)]; ok {
		return name
	}
	return Unknown
}

// Tracker reports a gesture once it has been seen on Stable consecutive
// frames, so a hand passing through a pose on its way to another does not
// fire. The zero value reports after a single frame.
type Tracker struct {
	Stable int

	// OnChange is called with the new gesture when the stable gesture changes.
	OnChange func(name Name)

	mu        sync.Mutex
	candidate Name
	count     int
	current   Name
}

// NewTracker returns a tracker that needs stable frames to settle.
func NewTracker(stable int) *Tracker {
	return &Tracker{Stable: stable}
}

// Observe feeds one frame's gesture and returns the settled gesture. An
// empty name means no hand was seen.
func (t *Tracker) Observe(name Name) Name {
	t.mu.Lock()

	if name == t.candidate {
		t.count++
	} else {
		t.candidate = name
		t.count = 1
	}

	need := t.Stable
	if need < 1 {
		need = 1
	}

	var changed bool
	if t.count >= need && t.current != t.candidate {
		t.current = t.candidate
		changed = true
	}
	current := t.current
	onChange := t.OnChange
	t.mu.Unlock()

	if changed && onChange != nil && current != "" {
		onChange(current)
	}
	return current
}

// Current returns the settled gesture.
func (t *Tracker) Current() Name {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
