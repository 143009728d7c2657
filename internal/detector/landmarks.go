// Package detector finds hands and faces in video frames.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// HandConnections is the MediaPipe hand skeleton as pairs of landmark indices.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is a landmark position. X and Y are normalized to [0,1] across
// the frame width and height; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel converts landmark i to pixel coordinates in a width x height frame.
func (h HandLandmarks) Pixel(i, width, height int) image.Point {
	p := h.Points[i]
	return image.Point{
		X: int(math.Round(p.X * float64(width))),
		Y: int(math.Round(p.Y * float64(height))),
	}
}

// Translate returns a copy of h with every point shifted by (dx, dy).
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// FaceDetection is one face found in a frame, in pixel coordinates of the
// frame that was passed to the detector.
type FaceDetection struct {
	Rect       image.Rectangle `json:"rect"`
	Confidence float64         `json:"confidence"`
	// Keypoints are eyes, nose, mouth and ear positions when the detector provides them.
	Keypoints []image.Point `json:"keypoints,omitempty"`
}

// Scale maps a detection found on a resized frame back onto a frame that is
// 1/scale times larger.
func (f FaceDetection) Scale(scale float64) FaceDetection {
	if scale <= 0 || scale == 1 {
		return f
	}
	inv := 1 / scale
	up := func(p image.Point) image.Point {
		return image.Point{X: int(math.Round(float64(p.X) * inv)), Y: int(math.Round(float64(p.Y) * inv))}
	}
	out := FaceDetection{
		Rect:       image.Rectangle{Min: up(f.Rect.Min), Max: up(f.Rect.Max)},
		Confidence: f.Confidence,
	}
	for _, k := range f.Keypoints {
		out.Keypoints = append(out.Keypoints, up(k))
	}
	return out
}
