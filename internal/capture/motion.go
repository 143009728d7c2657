package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	motionBlurSize      = 21
	motionDiffThreshold = 25

	// DefaultMotionPercent is the share of changed pixels that counts as motion.
	DefaultMotionPercent = 1.0

	// DefaultMaxStill forces a detection pass after this many still frames.
	DefaultMaxStill = 15
)

// MotionGate decides whether a frame changed enough since the last one to
// be worth running a detector on. Frames are compared after grayscale
// conversion and a Gaussian blur; a pixel counts as changed when its
// difference exceeds motionDiffThreshold.
//
// The first frame always passes, and so does every frame after MaxStill
// consecutive still ones, so cached detections never go stale for long.
type MotionGate struct {
	mu       sync.Mutex
	percent  float64
	maxStill int
	still    int
	prev     gocv.Mat
	primed   bool
}

// NewMotionGate returns a gate that passes frames where more than percent
// of the pixels changed. Non-positive arguments select the defaults.
func NewMotionGate(percent float64, maxStill int) *MotionGate {
	if percent <= 0 {
		percent = DefaultMotionPercent
	}
	if maxStill <= 0 {
		maxStill = DefaultMaxStill
	}
	return &MotionGate{
		percent:  percent,
		maxStill: maxStill,
		prev:     gocv.NewMat(),
	}
}

// Pass reports whether the frame should be processed and the percentage of
// pixels that changed since the previous frame.
func (g *MotionGate) Pass(frame gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: motionBlurSize, Y: motionBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.primed || blurred.Rows() != g.prev.Rows() || blurred.Cols() != g.prev.Cols() {
		g.replacePrev(blurred)
		g.primed = true
		g.still = 0
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, motionDiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100
	g.replacePrev(blurred)

	if changed > g.percent {
		g.still = 0
		return true, changed
	}
	g.still++
	if g.still >= g.maxStill {
		g.still = 0
		return true, changed
	}
	return false, changed
}

// replacePrev takes ownership of m.
func (g *MotionGate) replacePrev(m gocv.Mat) {
	g.prev.Close()
	g.prev = m
}

// Reset makes the next frame pass unconditionally.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primed = false
	g.still = 0
}

// Close releases the stored frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prev.Close()
	g.prev = gocv.NewMat()
	g.primed = false
}
