package detector

// Finger order used by pose helpers and the gesture classifier.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// fingerChain lists MCP, PIP, DIP and tip for the four long fingers.
var fingerChain = [NumFingers][4]int{
	Index:  {IndexMCP, IndexPIP, IndexDIP, IndexTip},
	Middle: {MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	Ring:   {RingMCP, RingPIP, RingDIP, RingTip},
	Pinky:  {PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// PoseLandmarks builds a synthetic right hand, palm facing the camera with
// the wrist at (0.5, 0.8), where each finger is extended or curled as given
// by up (thumb, index, middle, ring, pinky).
func PoseLandmarks(up [NumFingers]bool) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.76, Z: 0.01}
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.72, Z: 0.02}
	h.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.68, Z: 0.02}
	if up[Thumb] {
		h.Points[ThumbTip] = Point3D{X: 0.68, Y: 0.62, Z: 0.02}
	} else {
		h.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.66, Z: -0.02}
	}

	baseX := [NumFingers]float64{Index: 0.56, Middle: 0.50, Ring: 0.45, Pinky: 0.40}
	for f := Index; f < NumFingers; f++ {
		x := baseX[f]
		chain := fingerChain[f]
		h.Points[chain[0]] = Point3D{X: x, Y: 0.68}

		switch {
		case up[f] && f == Pinky:
			h.Points[chain[1]] = Point3D{X: x - 0.02, Y: 0.60}
			h.Points[chain[2]] = Point3D{X: x - 0.03, Y: 0.52}
			h.Points[chain[3]] = Point3D{X: x - 0.04, Y: 0.45}
		case up[f]:
			h.Points[chain[1]] = Point3D{X: x, Y: 0.56}
			h.Points[chain[2]] = Point3D{X: x, Y: 0.46}
			h.Points[chain[3]] = Point3D{X: x, Y: 0.36}
		default:
			h.Points[chain[1]] = Point3D{X: x, Y: 0.64, Z: -0.05}
			h.Points[chain[2]] = Point3D{X: x - 0.02, Y: 0.66, Z: -0.04}
			h.Points[chain[3]] = Point3D{X: x - 0.03, Y: 0.70, Z: -0.02}
		}
	}
	return h
}

// FistLandmarks returns a hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks([NumFingers]bool{})
}

// OpenPalmLandmarks returns a hand with every finger extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks([NumFingers]bool{true, true, true, true, true})
}

// PointingLandmarks returns a hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return PoseLandmarks([NumFingers]bool{Index: true})
}

// PeaceLandmarks returns a hand with the thumb and index finger extended.
func PeaceLandmarks() HandLandmarks {
	return PoseLandmarks([NumFingers]bool{Thumb: true, Index: true})
}

// TwoFingersLandmarks returns a hand with the index and middle fingers extended.
func TwoFingersLandmarks() HandLandmarks {
	return PoseLandmarks([NumFingers]bool{Index: true, Middle: true})
}

// ThumbsUpLandmarks returns a hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks([NumFingers]bool{Thumb: true})
}

// HandAt returns a pointing hand moved so the index fingertip sits at
// (x, y), with the thumb tip pinch to its right. Cursor tests use it to
// script fingertip paths and pinches.
func HandAt(x, y, pinch float64) HandLandmarks {
	h := PointingLandmarks()
	tip := h.Points[IndexTip]
	h = h.Translate(x-tip.X, y-tip.Y)
	h.Points[ThumbTip] = Point3D{X: x + pinch, Y: y}
	return h
}
