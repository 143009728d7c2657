package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/store"
)

// fakeDisplay records shown frames and replays scripted key presses.
type fakeDisplay struct {
	shown  int
	keys   []int
	closed bool
}

func (d *fakeDisplay) Show(img gocv.Mat) { d.shown++ }

func (d *fakeDisplay) WaitKey(delay int) int {
	if len(d.keys) == 0 {
		return -1
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k
}

func (d *fakeDisplay) Close() error {
	d.closed = true
	return nil
}

// fakePublisher collects published messages.
type fakePublisher struct {
	mu       sync.Mutex
	messages []any
	frames   int
}

func (p *fakePublisher) Publish(msg any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *fakePublisher) Frame(img gocv.Mat) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames++
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newFrames builds n blank frames that are closed when the test ends.
func newFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := capture.BlankFrames(n, 160, 120)
	t.Cleanup(func() { capture.CloseFrames(frames) })
	return frames
}

func TestToggle(t *testing.T) {
	var nilToggle *Toggle
	if !nilToggle.On() {
		t.Error("nil Toggle should be on")
	}

	tg := NewToggle(false)
	if tg.On() {
		t.Error("NewToggle(false) should be off")
	}
	tg.Set(true)
	if !tg.On() {
		t.Error("Set(true) should switch the toggle on")
	}
}

func TestRun_SkipsEmptyFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	blank := newFrames(t, 2)
	frames := []*gocv.Mat{nil, blank[0], nil, blank[1]}
	cam := capture.NewMockCamera(frames, false)

	handled := 0
	err := Deps{Camera: cam}.run(context.Background(), func(gocv.Mat) bool {
		handled++
		return true
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if handled != 2 {
		t.Errorf("handled %d frames, want 2", handled)
	}
	if cam.IsOpen() {
		t.Error("run() should close the camera")
	}
}

func TestRun_GivesUpAfterRepeatedFailures(t *testing.T) {
	cam := capture.NewMockCamera([]*gocv.Mat{nil}, true)

	err := Deps{Camera: cam}.run(context.Background(), func(gocv.Mat) bool {
		t.Error("no frame should reach the handler")
		return true
	})
	if !errors.Is(err, capture.ErrEmptyFrame) {
		t.Fatalf("run() error = %v, want ErrEmptyFrame", err)
	}
	if cam.Reads() != MaxReadFailures {
		t.Errorf("Reads() = %d, want %d", cam.Reads(), MaxReadFailures)
	}
}

func TestRun_NoCamera(t *testing.T) {
	err := Deps{}.run(context.Background(), func(gocv.Mat) bool { return true })
	if !errors.Is(err, capture.ErrCameraNotOpen) {
		t.Errorf("run() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	cam := capture.NewMockCamera(newFrames(t, 1), true)
	ctx, cancel := context.WithCancel(context.Background())

	handled := 0
	done := make(chan error, 1)
	go func() {
		done <- Deps{Camera: cam}.run(ctx, func(gocv.Mat) bool {
			handled++
			if handled == 3 {
				cancel()
			}
			return true
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not stop after cancel")
	}
	if handled != 3 {
		t.Errorf("handled %d frames, want 3", handled)
	}
}

func TestPresent_QuitKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	img := gocv.NewMat()
	defer img.Close()

	disp := &fakeDisplay{keys: []int{-1, 'x', 'q'}}
	pub := &fakePublisher{}
	d := Deps{Display: disp, Publisher: pub}

	want := []bool{true, true, false}
	for i, w := range want {
		if got := d.present(img); got != w {
			t.Errorf("present() call %d = %v, want %v", i, got, w)
		}
	}
	if disp.shown != 3 || pub.frames != 3 {
		t.Errorf("shown = %d, published frames = %d, want 3 each", disp.shown, pub.frames)
	}
}

func TestRecorder_WithoutStoreOnlyCounts(t *testing.T) {
	r := startRecorder(nil, store.ModeCursor, "sim", "")
	r.counters.Frames++
	r.event(store.Event{Kind: store.EventClick})
	r.finish()

	if r.SessionID() != "" {
		t.Error("a recorder without a store should have no session")
	}
	if len(r.pending) != 0 {
		t.Error("events should not be buffered without a session")
	}
}

func TestRecorder_FlushesInBatches(t *testing.T) {
	s := newTestStore(t)
	r := startRecorder(s, store.ModeCursor, "sim", "simulated")
	if r.SessionID() == "" {
		t.Fatal("startRecorder() should create a session")
	}

	for i := 0; i < eventBatch+5; i++ {
		r.event(store.Event{Kind: store.EventMove, X: i})
	}
	n, err := s.Events().CountBySession(r.SessionID())
	if err != nil {
		t.Fatalf("CountBySession() error = %v", err)
	}
	if n[store.EventMove] != eventBatch {
		t.Errorf("stored %d moves before finish, want %d", n[store.EventMove], eventBatch)
	}

	r.counters = store.Counters{Frames: 10, Moves: eventBatch + 5}
	r.finish()

	n, _ = s.Events().CountBySession(r.SessionID())
	if n[store.EventMove] != eventBatch+5 {
		t.Errorf("stored %d moves after finish, want %d", n[store.EventMove], eventBatch+5)
	}
	sess, err := s.Sessions().Get(r.SessionID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.Frames != 10 || sess.EndedAt == nil {
		t.Errorf("session = %+v, want finished with 10 frames", sess)
	}
}
