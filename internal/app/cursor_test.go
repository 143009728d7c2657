package app

import (
	"context"
	"testing"
	"time"

	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/detector"
	"github.com/ayusman/handcursor/internal/injector"
	"github.com/ayusman/handcursor/internal/pointer"
	"github.com/ayusman/handcursor/internal/store"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newSim(t *testing.T) *injector.Sim {
	t.Helper()
	sim := injector.NewSim(pointer.Screen{Width: 1000, Height: 1000})
	sim.Logf = t.Logf
	return sim
}

func newTestCursor(t *testing.T, deps Deps, det detector.Detector, sim *injector.Sim) *Cursor {
	t.Helper()
	c := NewCursor(deps, det, sim, CursorOptions{Pointer: pointer.DefaultConfig(), DrawOverlays: true})
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), step: 100 * time.Millisecond}
	c.now = clock.now
	return c
}

func TestCursor_ProcessMovesPointer(t *testing.T) {
	sim := newSim(t)
	pub := &fakePublisher{}
	c := newTestCursor(t, Deps{Publisher: pub}, detector.NewMockDetector(), sim)

	d := c.Process(detector.HandAt(0.5, 0.5, 0.2))
	if !d.Move {
		t.Fatal("first sample far from the origin should move")
	}
	if d.Click {
		t.Error("open hand should not click")
	}
	if d.Target != (pointer.Point{X: 500, Y: 500}) {
		t.Errorf("Target = %+v, want (500, 500)", d.Target)
	}

	moves := sim.Moves()
	if len(moves) != 1 || moves[0] != d.Pos {
		t.Errorf("sim moves = %v, want [%v]", moves, d.Pos)
	}
	if c.Counters().Moves != 1 {
		t.Errorf("Moves counter = %d, want 1", c.Counters().Moves)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	msg, ok := pub.messages[0].(PointerMessage)
	if !ok || msg.Type != "pointer" || msg.X != d.Pos.X || msg.Y != d.Pos.Y {
		t.Errorf("message = %+v", pub.messages[0])
	}
}

func TestCursor_ProcessConvergesOnStillHand(t *testing.T) {
	sim := newSim(t)
	c := newTestCursor(t, Deps{}, detector.NewMockDetector(), sim)

	var last pointer.Decision
	for i := 0; i < 60; i++ {
		last = c.Process(detector.HandAt(0.25, 0.75, 0.2))
	}
	dx, dy := last.Pos.X-250, last.Pos.Y-750
	if dx < -2 || dx > 2 || dy < -2 || dy > 2 {
		t.Errorf("Pos = %+v, want within 2px of (250, 750)", last.Pos)
	}
	if last.Move {
		t.Error("a settled pointer should stop moving")
	}
}

func TestCursor_ProcessClickCooldown(t *testing.T) {
	sim := newSim(t)
	c := newTestCursor(t, Deps{}, detector.NewMockDetector(), sim)

	var clicked []pointer.Point
	c.OnClick = func(p pointer.Point) { clicked = append(clicked, p) }

	pinch := detector.HandAt(0.5, 0.5, 0.01)
	// 100ms per sample against a 350ms cooldown.
	want := []bool{true, false, false, false, true}
	for i, w := range want {
		if got := c.Process(pinch).Click; got != w {
			t.Errorf("sample %d Click = %v, want %v", i, got, w)
		}
	}
	if sim.Clicks() != 2 || len(clicked) != 2 {
		t.Errorf("sim clicks = %d, OnClick calls = %d, want 2", sim.Clicks(), len(clicked))
	}
	if c.Counters().Clicks != 2 {
		t.Errorf("Clicks counter = %d, want 2", c.Counters().Clicks)
	}
}

func TestCursor_StartsFromBackendLocation(t *testing.T) {
	sim := newSim(t)
	sim.Move(300, 400)

	c := newTestCursor(t, Deps{}, detector.NewMockDetector(), sim)
	if c.state.Pos != (pointer.Point{X: 300, Y: 400}) {
		t.Errorf("origin = %+v, want (300, 400)", c.state.Pos)
	}
}

func TestCursor_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	s := newTestStore(t)
	sim := newSim(t)
	pub := &fakePublisher{}
	cam := capture.NewMockCamera(newFrames(t, 6), false)

	det := detector.NewMockDetector()
	det.SetSequence([][]detector.HandLandmarks{
		{detector.HandAt(0.3, 0.5, 0.2)},
		{detector.HandAt(0.4, 0.5, 0.2)},
		nil,
		{detector.HandAt(0.5, 0.5, 0.2)},
		{detector.HandAt(0.6, 0.5, 0.2)},
		{detector.HandAt(0.6, 0.5, 0.01)},
	})

	deps := Deps{Camera: cam, Store: s, Publisher: pub}
	c := newTestCursor(t, deps, det, sim)
	c.opts.RecordMoves = true
	c.opts.Status = "simulated"

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := c.Counters()
	if got.Frames != 6 || got.Detections != 5 || got.Clicks != 1 {
		t.Errorf("counters = %+v, want 6 frames, 5 detections, 1 click", got)
	}
	if got.Moves == 0 {
		t.Error("expected at least one move")
	}
	if pub.frames != 6 {
		t.Errorf("published %d frames, want 6", pub.frames)
	}
	if len(pub.messages) != 5 {
		t.Errorf("published %d pointer messages, want 5", len(pub.messages))
	}

	sessions, err := s.Sessions().List(0)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("List() = %v, %v, want one session", sessions, err)
	}
	sess := sessions[0]
	if sess.Mode != store.ModeCursor || sess.Backend != injector.NameSim || sess.Status != "simulated" {
		t.Errorf("session = %+v", sess)
	}
	if sess.Frames != 6 || sess.Clicks != 1 || sess.EndedAt == nil {
		t.Errorf("session counters = %+v", sess)
	}

	counts, err := s.Events().CountBySession(sess.ID)
	if err != nil {
		t.Fatalf("CountBySession() error = %v", err)
	}
	if counts[store.EventClick] != 1 || counts[store.EventMove] != got.Moves {
		t.Errorf("event counts = %v, want 1 click and %d moves", counts, got.Moves)
	}
}

func TestCursor_RunWhileDisabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	sim := newSim(t)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.HandAt(0.5, 0.5, 0.01)})

	deps := Deps{
		Camera:  capture.NewMockCamera(newFrames(t, 3), false),
		Enabled: NewToggle(false),
	}
	c := newTestCursor(t, deps, det, sim)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sim.Moves()) != 0 || sim.Clicks() != 0 {
		t.Errorf("disabled cursor injected %d moves, %d clicks", len(sim.Moves()), sim.Clicks())
	}
	if c.Counters().Detections != 3 {
		t.Errorf("Detections = %d, want 3", c.Counters().Detections)
	}
}
