package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ayusman/handcursor/internal/app"
	"github.com/ayusman/handcursor/internal/capture"
	"github.com/ayusman/handcursor/internal/server"
	"github.com/ayusman/handcursor/internal/store"
	"github.com/ayusman/handcursor/internal/tray"
)

// env holds what the loop commands share: the session store, the status
// server feed and the preview window.
type env struct {
	store   *store.Store
	feed    *server.Feed
	display app.Display
	closers []func()
}

// setup opens the store, starts the status server when --addr is set and
// opens a preview window unless running headless or window is empty.
func setup(ctx context.Context, mode, window string) (*env, error) {
	e := &env{}

	if !flags.noRecord {
		st, err := openStore()
		if err != nil {
			return nil, err
		}
		e.store = st
		e.closers = append(e.closers, func() { st.Close() })

		if err := st.Settings().SetAll(cfg.Settings()); err != nil {
			log.Printf("Failed to save settings: %v", err)
		}
	}

	if flags.addr != "" {
		e.feed = server.NewFeed()
		srv := server.New(server.Config{
			StaticDir: findWebDir(),
			Store:     e.store,
			Feed:      e.feed,
			Mode:      mode,
		})
		go func() {
			log.Printf("Status page on %s", statusURL(flags.addr))
			if err := srv.Run(ctx, flags.addr); err != nil {
				log.Printf("Status server failed: %v", err)
			}
		}()
	}

	if !cfg.Headless && window != "" {
		w := app.NewWindow(window)
		e.display = w
		e.closers = append(e.closers, func() { w.Close() })
	}
	return e, nil
}

// deps builds the loop dependencies around a fresh camera.
func (e *env) deps() app.Deps {
	d := app.Deps{
		Camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.CameraID,
			Width:    cfg.CameraWidth,
			Height:   cfg.CameraHeight,
		}),
		Store: e.store,
	}
	// Interface fields stay nil rather than holding typed nil pointers.
	if e.display != nil {
		d.Display = e.display
	}
	if e.feed != nil {
		d.Publisher = e.feed
	}
	return d
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func openStore() (*store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// withTray runs the system tray on the calling goroutine and run on another.
// The tray closes when run returns.
func withTray(t *tray.Tray, run func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- run()
		t.Stop()
	}()
	t.Run()
	return <-errCh
}

func statusURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

// openBrowser opens url with the desktop's default handler.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open %s: %v", url, err)
		return
	}
	go cmd.Wait()
}
