package main

import (
	"context"
	"errors"
	"log"

	cli "github.com/spf13/cobra"

	"github.com/ayusman/handcursor/internal/app"
	"github.com/ayusman/handcursor/internal/injector"
)

var tourFlags struct {
	screenshot string
	noHotkey   bool
}

var tourCmd = &cli.Command{
	Use:   "tour",
	Short: "Walk through mouse moves, clicks, drags, scrolling, typing and a screenshot",
	Long: `Drives the mouse and keyboard through a fixed script. Move the pointer to
the top-left corner or press ctrl+shift+q to abort.`,
	Args: cli.NoArgs,
	RunE: func(cmd *cli.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sel := injector.Select(cfg.MouseBackend, injector.HostEnv(cfg.Headless))
		auto := injector.NewFallback(sel.Active, sel.Secondary)

		e, err := setup(ctx, "tour", "")
		if err != nil {
			return err
		}
		defer e.close()

		if !tourFlags.noHotkey && sel.Status == injector.StatusAvailable {
			stop := app.WatchAbort(cancel)
			defer stop()
		}

		opts := app.DefaultTourOptions()
		opts.Screenshot = tourFlags.screenshot

		err = app.NewTour(auto, e.store, opts).Run(ctx)
		switch {
		case errors.Is(err, app.ErrFailSafe):
			return nil
		case errors.Is(err, context.Canceled):
			log.Println("Tour aborted.")
			return nil
		}
		return err
	},
}

func init() {
	tourCmd.Flags().StringVar(&tourFlags.screenshot, "screenshot", app.DefaultTourOptions().Screenshot, "screenshot output path; empty skips the screenshot")
	tourCmd.Flags().BoolVar(&tourFlags.noHotkey, "no-hotkey", false, "do not install the ctrl+shift+q abort hook")
	rootCmd.AddCommand(tourCmd)
}
