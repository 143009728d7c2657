package injector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/handcursor/internal/pointer"
)

func testEnv(goos string, vars map[string]string, hasXdotool bool) Env {
	return Env{
		GOOS: goos,
		Getenv: func(k string) string {
			return vars[k]
		},
		LookPath: func(name string) (string, error) {
			if hasXdotool && name == "xdotool" {
				return "/usr/bin/xdotool", nil
			}
			return "", errors.New("not found")
		},
	}
}

func TestProbeRobotgo(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want Status
	}{
		{"linux with display", testEnv("linux", map[string]string{"DISPLAY": ":0"}, false), StatusAvailable},
		{"linux wayland only", testEnv("linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, false), StatusUnavailable},
		{"linux no display", testEnv("linux", nil, false), StatusUnavailable},
		{"darwin", testEnv("darwin", nil, false), StatusAvailable},
		{"windows", testEnv("windows", nil, false), StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProbeRobotgo(tt.env); got.Status != tt.want {
				t.Errorf("ProbeRobotgo() = %v (%s), want %v", got.Status, got.Reason, tt.want)
			}
		})
	}

	t.Run("headless", func(t *testing.T) {
		env := testEnv("darwin", nil, false)
		env.Headless = true
		if got := ProbeRobotgo(env); got.Status != StatusUnavailable {
			t.Errorf("headless ProbeRobotgo() = %v, want unavailable", got.Status)
		}
	})
}

func TestProbeXdotool(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want Status
	}{
		{"linux wayland with binary", testEnv("linux", map[string]string{"WAYLAND_DISPLAY": "w"}, true), StatusAvailable},
		{"linux x11 with binary", testEnv("linux", map[string]string{"DISPLAY": ":0"}, true), StatusAvailable},
		{"linux without binary", testEnv("linux", map[string]string{"DISPLAY": ":0"}, false), StatusUnavailable},
		{"linux no display", testEnv("linux", nil, true), StatusUnavailable},
		{"darwin", testEnv("darwin", nil, true), StatusUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProbeXdotool(tt.env); got.Status != tt.want {
				t.Errorf("ProbeXdotool() = %v (%s), want %v", got.Status, got.Reason, tt.want)
			}
		})
	}
}

func TestChoose(t *testing.T) {
	both := []Probe{{Name: NameRobotgo, Status: StatusAvailable}, {Name: NameXdotool, Status: StatusAvailable}}
	onlyRobotgo := []Probe{{Name: NameRobotgo, Status: StatusAvailable}, {Name: NameXdotool}}
	onlyXdotool := []Probe{{Name: NameRobotgo}, {Name: NameXdotool, Status: StatusAvailable}}
	none := []Probe{{Name: NameRobotgo}, {Name: NameXdotool}}

	linux := Env{GOOS: "linux"}
	darwin := Env{GOOS: "darwin"}

	tests := []struct {
		name      string
		preferred string
		env       Env
		probes    []Probe
		want      string
	}{
		{"linux prefers xdotool", "", linux, both, NameXdotool},
		{"darwin prefers robotgo", "", darwin, both, NameRobotgo},
		{"explicit robotgo on linux", NameRobotgo, linux, both, NameRobotgo},
		{"explicit xdotool", NameXdotool, darwin, both, NameXdotool},
		{"explicit but unavailable", NameXdotool, linux, onlyRobotgo, NameRobotgo},
		{"only xdotool", "", darwin, onlyXdotool, NameXdotool},
		{"nothing available", "", linux, none, NameSim},
		{"explicit sim", NameSim, linux, both, NameSim},
		{"unknown preference", "pyautogui", darwin, onlyRobotgo, NameRobotgo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.preferred, tt.env, tt.probes); got != tt.want {
				t.Errorf("Choose(%q) = %q, want %q", tt.preferred, got, tt.want)
			}
		})
	}
}

func TestStatus_String(t *testing.T) {
	if StatusAvailable.String() != "available" || StatusUnavailable.String() != "unavailable" || StatusSimulated.String() != "simulated" {
		t.Error("unexpected Status strings")
	}
}

type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	err     error
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	if len(args) > 0 {
		if out, ok := f.outputs[args[0]]; ok {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func (f *fakeRunner) last() string {
	if len(f.calls) == 0 {
		return ""
	}
	return strings.Join(f.calls[len(f.calls)-1], " ")
}

func TestXdotool_Commands(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"getdisplaygeometry": "2560 1440\n",
		"getmouselocation":   "X=120\nY=340\nSCREEN=0\nWINDOW=123\n",
	}}
	x := newXdotool(r.run)

	if got := x.ScreenSize(); got != (pointer.Screen{Width: 2560, Height: 1440}) {
		t.Errorf("ScreenSize() = %+v", got)
	}

	tests := []struct {
		name string
		do   func() error
		want string
	}{
		{"move", func() error { return x.Move(10, 20) }, "xdotool mousemove 10 20"},
		{"click", x.Click, "xdotool click 1"},
		{"right click", func() error { return x.ClickButton(ButtonRight, false) }, "xdotool click 3"},
		{"double click", func() error { return x.ClickButton(ButtonLeft, true) }, "xdotool click --repeat 2 1"},
		{"press", func() error { return x.Press(ButtonLeft) }, "xdotool mousedown 1"},
		{"release", func() error { return x.Release(ButtonLeft) }, "xdotool mouseup 1"},
		{"scroll up", func() error { return x.Scroll(5) }, "xdotool click --repeat 5 4"},
		{"scroll down", func() error { return x.Scroll(-3) }, "xdotool click --repeat 3 5"},
		{"type", func() error { return x.TypeText("hi") }, "xdotool type -- hi"},
		{"hotkey", func() error { return x.KeyTap("a", "ctrl") }, "xdotool key ctrl+a"},
		{"plain key", func() error { return x.KeyTap("Return") }, "xdotool key Return"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.do(); err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := r.last(); got != tt.want {
				t.Errorf("ran %q, want %q", got, tt.want)
			}
		})
	}

	px, py, err := x.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if px != 120 || py != 340 {
		t.Errorf("Location() = (%d, %d), want (120, 340)", px, py)
	}
}

func TestXdotool_ScreenFallback(t *testing.T) {
	r := &fakeRunner{err: errors.New("cannot open display")}
	x := newXdotool(r.run)

	if got := x.ScreenSize(); got != DefaultScreen {
		t.Errorf("ScreenSize() = %+v, want default", got)
	}
	if err := x.Move(1, 1); err == nil {
		t.Error("Move() should surface runner errors")
	}
	if _, _, err := x.Location(); err == nil {
		t.Error("Location() should surface runner errors")
	}
}

func TestSim_Records(t *testing.T) {
	s := NewSim(pointer.Screen{})
	var lines []string
	s.Logf = func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }

	if s.ScreenSize() != DefaultScreen {
		t.Errorf("zero screen should fall back to default, got %+v", s.ScreenSize())
	}

	s.Move(10, 20)
	s.Move(11, 21) // within the log interval, recorded but not logged
	s.Click()
	s.KeyTap("c", "ctrl")
	s.TypeText("Hello world!\n")

	if got := len(s.Moves()); got != 2 {
		t.Errorf("Moves() = %d, want 2", got)
	}
	if x, y, _ := s.Location(); x != 11 || y != 21 {
		t.Errorf("Location() = (%d, %d), want (11, 21)", x, y)
	}
	if s.Clicks() != 1 {
		t.Errorf("Clicks() = %d, want 1", s.Clicks())
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != "ctrl+c" {
		t.Errorf("Keys() = %v", keys)
	}
	if typed := s.Typed(); len(typed) != 1 || typed[0] != "Hello world!\n" {
		t.Errorf("Typed() = %q", typed)
	}

	var moveLines int
	for _, l := range lines {
		if strings.HasPrefix(l, "[SIM] Move") {
			moveLines++
		}
	}
	if moveLines != 1 {
		t.Errorf("logged %d move lines, want 1 (throttled)", moveLines)
	}
}

// flaky fails every pointer action while failing is set.
type flaky struct {
	*Sim
	failing bool
	calls   int
}

func (f *flaky) Name() string { return "flaky" }

func (f *flaky) Move(x, y int) error {
	f.calls++
	if f.failing {
		return errors.New("injection refused")
	}
	return f.Sim.Move(x, y)
}

func (f *flaky) Click() error {
	f.calls++
	if f.failing {
		return errors.New("injection refused")
	}
	return f.Sim.Click()
}

func quiet(format string, args ...any) {}

func TestFallback_RetriesOnSecondary(t *testing.T) {
	primary := &flaky{Sim: NewSim(DefaultScreen), failing: true}
	primary.Sim.Logf = quiet
	secondary := NewSim(DefaultScreen)
	secondary.Logf = quiet

	f := NewFallback(primary, secondary)
	f.Logf = quiet

	if err := f.Move(5, 5); err != nil {
		t.Fatalf("Move() error = %v, want swallowed", err)
	}
	if got := len(secondary.Moves()); got != 1 {
		t.Errorf("secondary moves = %d, want 1", got)
	}
	if f.Name() != "flaky" {
		t.Errorf("should not switch after one failure, active = %s", f.Name())
	}
}

func TestFallback_SwitchesAfterRepeatedFailures(t *testing.T) {
	primary := &flaky{Sim: NewSim(DefaultScreen), failing: true}
	primary.Sim.Logf = quiet
	secondary := NewSim(DefaultScreen)
	secondary.Logf = quiet

	f := NewFallback(primary, secondary)
	f.Logf = quiet

	for i := 0; i < MaxPrimaryFailures; i++ {
		f.Click()
	}
	if f.Name() != NameSim {
		t.Fatalf("active = %s, want %s after %d failures", f.Name(), NameSim, MaxPrimaryFailures)
	}

	before := primary.calls
	f.Move(1, 2)
	if primary.calls != before {
		t.Error("primary should not be called after switching")
	}
	if secondary.Clicks() != MaxPrimaryFailures {
		t.Errorf("secondary clicks = %d, want %d", secondary.Clicks(), MaxPrimaryFailures)
	}
}

func TestFallback_SuccessResetsFailures(t *testing.T) {
	primary := &flaky{Sim: NewSim(DefaultScreen)}
	primary.Sim.Logf = quiet
	f := NewFallback(primary, nil)
	f.Logf = quiet
	f.secondary.(*Sim).Logf = quiet

	for i := 0; i < 10; i++ {
		primary.failing = i%2 == 0
		f.Move(i, i)
	}
	if f.Name() != "flaky" {
		t.Errorf("alternating failures should not switch, active = %s", f.Name())
	}
}

func TestGlideAndDrag(t *testing.T) {
	s := NewSim(DefaultScreen)
	s.Logf = quiet

	if err := Glide(s, 100, 200, 50*time.Millisecond); err != nil {
		t.Fatalf("Glide() error = %v", err)
	}
	moves := s.Moves()
	if len(moves) < 2 {
		t.Fatalf("Glide produced %d moves, want several", len(moves))
	}
	if last := moves[len(moves)-1]; last != (pointer.Point{X: 100, Y: 200}) {
		t.Errorf("Glide ended at %+v, want {100 200}", last)
	}

	if err := DragRel(s, 60, 0, 0, ButtonLeft); err != nil {
		t.Fatalf("DragRel() error = %v", err)
	}
	if x, y, _ := s.Location(); x != 160 || y != 200 {
		t.Errorf("after DragRel Location() = (%d, %d), want (160, 200)", x, y)
	}

	if err := GlideRel(s, 50, -30, 0); err != nil {
		t.Fatalf("GlideRel() error = %v", err)
	}
	if x, y, _ := s.Location(); x != 210 || y != 170 {
		t.Errorf("after GlideRel Location() = (%d, %d), want (210, 170)", x, y)
	}
}
