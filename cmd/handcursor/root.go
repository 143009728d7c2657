package main

import (
	"os"
	"path/filepath"

	cli "github.com/spf13/cobra"

	"github.com/ayusman/handcursor/internal/config"
)

// cfg is the effective configuration: environment first, then flags.
var cfg config.Config

var flags struct {
	camera     int
	width      int
	height     int
	procScale  float64
	backend    string
	headless   bool
	noOverlays bool
	dataDir    string
	addr       string
	noRecord   bool
	staticDir  string
}

var rootCmd = &cli.Command{
	Use:           "handcursor",
	Short:         "Webcam hand tracking demos and a hand-driven mouse pointer",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cli.Command, args []string) error {
		cfg = config.Load()
		applyFlags(cmd)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flags.camera, "camera", 0, "camera device index (env "+config.EnvCameraID+")")
	pf.IntVar(&flags.width, "width", config.DefaultCameraWidth, "requested capture width (env "+config.EnvCameraWidth+")")
	pf.IntVar(&flags.height, "height", config.DefaultCameraHeight, "requested capture height (env "+config.EnvCameraHeight+")")
	pf.Float64Var(&flags.procScale, "proc-scale", config.DefaultProcScale, "downscale factor before detection, applied in [0.2, 1.0) (env "+config.EnvProcScale+")")
	pf.StringVar(&flags.backend, "backend", "", "mouse backend: robotgo, xdotool or sim (env "+config.EnvMouseBackend+")")
	pf.BoolVar(&flags.headless, "headless", false, "no preview window and no GUI mouse backend (env "+config.EnvHeadless+")")
	pf.BoolVar(&flags.noOverlays, "no-overlays", false, "do not draw landmarks and status text (env "+config.EnvDrawOverlays+"=0)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory for the session database (env "+config.EnvDataDir+")")
	pf.StringVar(&flags.addr, "addr", "", "serve the status page on this address, e.g. :8080")
	pf.BoolVar(&flags.noRecord, "no-record", false, "do not record sessions")
	pf.StringVar(&flags.staticDir, "static", "", "directory with the status page (default: web/ or ~/.handcursor/web)")
}

// applyFlags overrides environment values with flags given on the command line.
func applyFlags(cmd *cli.Command) {
	f := cmd.Flags()
	if f.Changed("camera") {
		cfg.CameraID = flags.camera
	}
	if f.Changed("width") {
		cfg.CameraWidth = flags.width
	}
	if f.Changed("height") {
		cfg.CameraHeight = flags.height
	}
	if f.Changed("proc-scale") {
		cfg.ProcScale = flags.procScale
	}
	if f.Changed("backend") {
		cfg.MouseBackend = flags.backend
	}
	if f.Changed("headless") {
		cfg.Headless = flags.headless
	}
	if f.Changed("no-overlays") {
		cfg.DrawOverlays = !flags.noOverlays
	}
	if f.Changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
}

// findWebDir searches for the status page in common locations.
// It checks: "web", "../web", "../../web", and ~/.handcursor/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	if flags.staticDir != "" {
		return flags.staticDir
	}

	for _, p := range []string{"web", "../web", "../../web", filepath.Join(cfg.DataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
