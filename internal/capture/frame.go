package capture

import (
	"image"

	"gocv.io/x/gocv"
)

// Processing scale bounds. Scales outside [MinProcScale, 1) leave frames untouched.
const (
	MinProcScale = 0.2
	MaxProcScale = 1.0
)

// Flip mirrors src horizontally into a new Mat so the preview behaves like a
// mirror. The caller closes the result.
func Flip(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Flip(src, &dst, 1)
	return dst
}

// ScaleApplies reports whether Downscale would resize at the given scale.
func ScaleApplies(scale float64) bool {
	return scale >= MinProcScale && scale < MaxProcScale
}

// Downscale returns a copy of src resized by scale with linear
// interpolation, or an unscaled clone when the scale does not apply.
// Landmark coordinates are normalized, so detections on the smaller frame
// map straight back onto the full-size one. The caller closes the result.
func Downscale(src gocv.Mat, scale float64) gocv.Mat {
	if !ScaleApplies(scale) {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{}, scale, scale, gocv.InterpolationLinear)
	return dst
}
