package main

import (
	"context"
	"fmt"
	"log"

	cli "github.com/spf13/cobra"

	"github.com/ayusman/handcursor/internal/app"
	"github.com/ayusman/handcursor/internal/detector"
	"github.com/ayusman/handcursor/internal/injector"
	"github.com/ayusman/handcursor/internal/pointer"
	"github.com/ayusman/handcursor/internal/tray"
)

var cursorFlags struct {
	tray        bool
	recordMoves bool
}

var cursorCmd = &cli.Command{
	Use:   "cursor",
	Short: "Move the mouse with your index fingertip and pinch to click",
	Long: `Tracks one hand through the webcam. The index fingertip drives the
mouse pointer with adaptive smoothing; bringing the thumb tip close to the
index tip clicks. Tunables are read from SMOOTH_ALPHA, ACCEL_GAIN,
MOVE_DEADZONE_PX, MAX_UPDATE_HZ, PINCH_THRESHOLD, PINCH_RELEASE and
CLICK_COOLDOWN.`,
	Args: cli.NoArgs,
	RunE: runCursor,
}

func init() {
	cursorCmd.Flags().BoolVar(&cursorFlags.tray, "tray", false, "show a system tray menu to pause pointer control (disables the preview window)")
	cursorCmd.Flags().BoolVar(&cursorFlags.recordMoves, "record-moves", false, "store every pointer move, not only clicks")
	rootCmd.AddCommand(cursorCmd)
}

func runCursor(cmd *cli.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sel := injector.Select(cfg.MouseBackend, injector.HostEnv(cfg.Headless))
	backend := injector.NewFallback(sel.Active, sel.Secondary)

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}
	defer det.Close()

	window := "Hand Cursor Control"
	if cursorFlags.tray {
		// The tray owns the main thread.
		window = ""
	}
	e, err := setup(ctx, "cursor", window)
	if err != nil {
		return err
	}
	defer e.close()

	enabled := app.NewToggle(true)
	deps := e.deps()
	deps.Enabled = enabled

	cursor := app.NewCursor(deps, det, backend, app.CursorOptions{
		Pointer:      cfg.Pointer,
		ProcScale:    cfg.ProcScale,
		DrawOverlays: cfg.DrawOverlays,
		RecordMoves:  cursorFlags.recordMoves,
		Status:       sel.Status.String(),
	})

	log.Printf("Mouse backend: %s (%s)", backend.Name(), sel.Status)
	if !cursorFlags.tray {
		if e.display != nil {
			log.Println("Press 'q' in the preview window to quit.")
		}
		return cursor.Run(ctx)
	}

	t := tray.New("handcursor", true)
	t.SetBackend(backend.Name())
	t.OnToggle(func(on bool) {
		enabled.Set(on)
		log.Printf("Pointer control enabled: %t", on)
	})
	t.OnQuit(cancel)
	if flags.addr != "" {
		t.OnStatusPage(func() { openBrowser(statusURL(flags.addr)) })
	}
	cursor.OnClick = func(p pointer.Point) {
		t.SetLast(fmt.Sprintf("click (%d, %d)", p.X, p.Y))
	}
	return withTray(t, func() error { return cursor.Run(ctx) })
}
