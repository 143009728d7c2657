package main

import (
	"fmt"

	cli "github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/ayusman/handcursor/internal/overlay"
)

var drawOutput string

var drawCmd = &cli.Command{
	Use:   "draw",
	Short: "Render the OpenCV demo image to a PNG file",
	Args:  cli.NoArgs,
	RunE: func(cmd *cli.Command, args []string) error {
		if err := overlay.WriteDemo(drawOutput); err != nil {
			return err
		}
		fmt.Printf("Demo image created: %s\n", drawOutput)
		fmt.Printf("OpenCV version: %s\n", gocv.OpenCVVersion())
		return nil
	},
}

func init() {
	drawCmd.Flags().StringVarP(&drawOutput, "output", "o", overlay.DemoOutput, "output image path")
	rootCmd.AddCommand(drawCmd)
}
