package main

import (
	"fmt"
	"log"

	cli "github.com/spf13/cobra"

	"github.com/ayusman/handcursor/internal/app"
	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/detector"
)

var faceFlags struct {
	detector     string
	cascade      string
	noMotionGate bool
}

var faceCmd = &cli.Command{
	Use:   "face",
	Short: "Box every detected face and caption the frame",
	Args:  cli.NoArgs,
	RunE: func(cmd *cli.Command, args []string) error {
		det, err := openFaceDetector(faceFlags.detector, faceFlags.cascade)
		if err != nil {
			return err
		}
		defer det.Close()

		e, err := setup(cmd.Context(), "face", "Face Detection")
		if err != nil {
			return err
		}
		defer e.close()

		opts := app.FaceOptions{ProcScale: cfg.ProcScale}
		if !faceFlags.noMotionGate {
			opts.Motion = capture.NewMotionGate(capture.DefaultMotionPercent, capture.DefaultMaxStill)
			defer opts.Motion.Close()
		}

		return app.NewFaces(e.deps(), det, opts).Run(cmd.Context())
	},
}

func init() {
	f := faceCmd.Flags()
	f.StringVar(&faceFlags.detector, "detector", "auto", "face detector: auto, mediapipe or cascade")
	f.StringVar(&faceFlags.cascade, "cascade", "", "Haar cascade XML file (default: search common OpenCV locations)")
	f.BoolVar(&faceFlags.noMotionGate, "no-motion-gate", false, "run detection on every frame, even when nothing moves")
	rootCmd.AddCommand(faceCmd)
}

// openFaceDetector prefers MediaPipe in auto mode and falls back to the Haar cascade.
func openFaceDetector(kind, cascade string) (detector.FaceDetector, error) {
	switch kind {
	case "mediapipe":
		mp, err := detector.NewMediaPipeFaceDetector(detector.FaceConfig())
		if err != nil {
			return nil, err
		}
		return mp, nil
	case "cascade":
		return openCascade(cascade)
	case "auto", "":
		mp, err := detector.NewMediaPipeFaceDetector(detector.FaceConfig())
		if err == nil {
			log.Println("Using MediaPipe face detection")
			return mp, nil
		}
		log.Printf("MediaPipe not available (%v), using Haar cascade", err)
		return openCascade(cascade)
	default:
		return nil, fmt.Errorf("unknown face detector %q", kind)
	}
}

func openCascade(path string) (detector.FaceDetector, error) {
	d, err := detector.NewCascadeFaceDetector(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}
