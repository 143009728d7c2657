package injector

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/handcursor/internal/pointer"
)

// xdotoolTimeout bounds a single xdotool invocation.
const xdotoolTimeout = 2 * time.Second

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Xdotool drives the pointer and keyboard by running the xdotool binary.
type Xdotool struct {
	run    runFunc
	screen pointer.Screen
}

// NewXdotool returns an xdotool backend. The screen size is queried once.
func NewXdotool() *Xdotool {
	return newXdotool(execRun)
}

func newXdotool(run runFunc) *Xdotool {
	x := &Xdotool{run: run}
	x.screen = x.queryScreen()
	return x
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s timed out after %s", name, xdotoolTimeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func (x *Xdotool) exec(args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), xdotoolTimeout)
	defer cancel()
	return x.run(ctx, "xdotool", args...)
}

func (x *Xdotool) do(args ...string) error {
	_, err := x.exec(args...)
	return err
}

func (x *Xdotool) Name() string { return NameXdotool }

func (x *Xdotool) Move(px, py int) error {
	return x.do("mousemove", strconv.Itoa(px), strconv.Itoa(py))
}

func (x *Xdotool) Click() error {
	return x.ClickButton(ButtonLeft, false)
}

func (x *Xdotool) ScreenSize() pointer.Screen {
	return x.screen
}

func (x *Xdotool) queryScreen() pointer.Screen {
	out, err := x.exec("getdisplaygeometry")
	if err != nil {
		return DefaultScreen
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return DefaultScreen
	}
	w, errW := strconv.Atoi(fields[0])
	h, errH := strconv.Atoi(fields[1])
	if errW != nil || errH != nil {
		return DefaultScreen
	}
	return screenOrDefault(pointer.Screen{Width: w, Height: h})
}

// Location parses `xdotool getmouselocation --shell` output.
func (x *Xdotool) Location() (int, int, error) {
	out, err := x.exec("getmouselocation", "--shell")
	if err != nil {
		return 0, 0, err
	}

	px, py := -1, -1
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "X":
			px, _ = strconv.Atoi(value)
		case "Y":
			py, _ = strconv.Atoi(value)
		}
	}
	if px < 0 || py < 0 {
		return 0, 0, fmt.Errorf("unexpected getmouselocation output: %q", out)
	}
	return px, py, nil
}

func buttonNumber(b Button) string {
	switch b {
	case ButtonRight:
		return "3"
	case ButtonMiddle:
		return "2"
	default:
		return "1"
	}
}

func (x *Xdotool) Press(b Button) error {
	return x.do("mousedown", buttonNumber(b))
}

func (x *Xdotool) Release(b Button) error {
	return x.do("mouseup", buttonNumber(b))
}

func (x *Xdotool) ClickButton(b Button, double bool) error {
	if double {
		return x.do("click", "--repeat", "2", buttonNumber(b))
	}
	return x.do("click", buttonNumber(b))
}

// Scroll maps to wheel buttons 4 (up) and 5 (down).
func (x *Xdotool) Scroll(amount int) error {
	if amount == 0 {
		return nil
	}
	button := "4"
	if amount < 0 {
		button = "5"
		amount = -amount
	}
	return x.do("click", "--repeat", strconv.Itoa(amount), button)
}

func (x *Xdotool) TypeText(s string) error {
	return x.do("type", "--", s)
}

func (x *Xdotool) KeyTap(key string, modifiers ...string) error {
	combo := append(append([]string{}, modifiers...), key)
	return x.do("key", strings.Join(combo, "+"))
}
