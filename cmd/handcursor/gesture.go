package main

import (
	"fmt"

	cli "github.com/spf13/cobra"

	"github.com/ayusman/handcursor/internal/app"
	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/detector"
)

var gestureNoMotionGate bool

var gestureCmd = &cli.Command{
	Use:   "gesture",
	Short: "Label up to two hands with Fist, Open Hand, Pointing, Peace Sign or Two Fingers",
	Args:  cli.NoArgs,
	RunE: func(cmd *cli.Command, args []string) error {
		det, err := detector.NewMediaPipeDetector(detector.GestureConfig())
		if err != nil {
			return fmt.Errorf("hand detector: %w", err)
		}
		defer det.Close()

		e, err := setup(cmd.Context(), "gesture", "Hand Gesture Recognition")
		if err != nil {
			return err
		}
		defer e.close()

		opts := app.GestureOptions{ProcScale: cfg.ProcScale}
		if !gestureNoMotionGate {
			opts.Motion = capture.NewMotionGate(capture.DefaultMotionPercent, capture.DefaultMaxStill)
			defer opts.Motion.Close()
		}

		return app.NewGestures(e.deps(), det, opts).Run(cmd.Context())
	},
}

func init() {
	gestureCmd.Flags().BoolVar(&gestureNoMotionGate, "no-motion-gate", false, "run detection on every frame, even when nothing moves")
	rootCmd.AddCommand(gestureCmd)
}
