package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera once playback ends.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back pre-built frames for tests. A nil entry in the frame
// list plays back as an empty frame.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	index   int
	loop    bool
	running bool
	fps     int
	reads   int
}

func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame. The caller closes it.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, ErrNoMoreFrames
	}
	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	src := c.frames[c.index]
	c.index++
	c.reads++

	if src == nil || src.Empty() {
		return nil, ErrEmptyFrame
	}
	frame := src.Clone()
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns how many frames have been handed out, empty ones included.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// BlankFrames builds n black BGR frames of the given size. The caller closes them.
func BlankFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return frames
}

// CloseFrames closes every non-nil frame.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
