// Package overlay draws detections and status text onto preview frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/detector"
	"github.com/ayusman/handcursor/internal/gesture"
	"github.com/ayusman/handcursor/internal/pointer"
)

// Colors used across the previews.
var (
	Red   = color.RGBA{R: 255, A: 255}
	Green = color.RGBA{G: 255, A: 255}
	Blue  = color.RGBA{B: 255, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	landmarkColor   = color.RGBA{R: 255, G: 48, B: 48, A: 255}
	connectionColor = color.RGBA{R: 224, G: 224, B: 224, A: 255}
)

// FaceCaption is shown whenever at least one face is in view.
const FaceCaption = "fine boy"

// GestureText formats the gesture label.
func GestureText(name gesture.Name) string {
	return fmt.Sprintf("Gesture: %s", name)
}

// CursorText formats the emitted cursor position.
func CursorText(p pointer.Point) string {
	return fmt.Sprintf("Cursor(screen): (%d, %d)", p.X, p.Y)
}

// PinchText formats the normalized thumb to index distance.
func PinchText(d float64) string {
	return fmt.Sprintf("PinchDist(norm): %.3f", d)
}

// Text draws s with the Hershey simplex font.
func Text(img *gocv.Mat, s string, at image.Point, scale float64, c color.RGBA, thickness int) {
	gocv.PutText(img, s, at, gocv.FontHersheySimplex, scale, c, thickness)
}

// Hand draws the landmark skeleton of h.
func Hand(img *gocv.Mat, h detector.HandLandmarks) {
	w, ht := img.Cols(), img.Rows()
	for _, c := range detector.HandConnections {
		gocv.Line(img, h.Pixel(c[0], w, ht), h.Pixel(c[1], w, ht), connectionColor, 2)
	}
	for i := 0; i < detector.NumLandmarks; i++ {
		gocv.Circle(img, h.Pixel(i, w, ht), 4, landmarkColor, -1)
	}
}

// Faces draws each detection's box and keypoints.
func Faces(img *gocv.Mat, faces []detector.FaceDetection) {
	for _, f := range faces {
		gocv.Rectangle(img, f.Rect, Green, 2)
		for _, k := range f.Keypoints {
			gocv.Circle(img, k, 3, Red, -1)
		}
	}
}

// FaceCaptionAt draws FaceCaption when faces is non-empty.
func FaceCaptionAt(img *gocv.Mat, faces []detector.FaceDetection) {
	if len(faces) > 0 {
		Text(img, FaceCaption, image.Pt(10, 50), 1, Green, 2)
	}
}

// GestureLabel draws the gesture of the i-th hand, stacked from the top left.
func GestureLabel(img *gocv.Mat, i int, name gesture.Name) {
	Text(img, GestureText(name), image.Pt(10, 50+40*i), 1, Green, 2)
}

// CursorStatus draws the cursor position and pinch distance, plus CLICK!
// on frames where a click fired.
func CursorStatus(img *gocv.Mat, d pointer.Decision) {
	if d.Click {
		Text(img, "CLICK!", image.Pt(50, 50), 1.5, Red, 3)
	}
	Text(img, CursorText(d.Pos), image.Pt(10, 30), 0.7, Blue, 2)
	Text(img, PinchText(d.Pinch), image.Pt(10, 60), 0.7, Green, 2)
}
