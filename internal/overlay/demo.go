package overlay

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Demo image geometry.
const (
	DemoSize   = 300
	DemoRadius = 100
	DemoText   = "OpenCV Demo"
	DemoOutput = "demo_output.png"
)

// DemoImage draws a filled red circle in the middle of a black square with
// a white caption. The caller closes the result.
func DemoImage() gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), DemoSize, DemoSize, gocv.MatTypeCV8UC3)
	gocv.Circle(&img, image.Pt(DemoSize/2, DemoSize/2), DemoRadius, Red, -1)
	Text(&img, DemoText, image.Pt(50, 50), 1, White, 2)
	return img
}

// WriteDemo renders DemoImage to path.
func WriteDemo(path string) error {
	img := DemoImage()
	defer img.Close()

	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("could not write %s", path)
	}
	return nil
}
