package injector

import (
	"log"
	"os"
	"os/exec"
	"runtime"

	"github.com/ayusman/handcursor/internal/pointer"
)

// Status is the result of probing a backend.
type Status int

const (
	// StatusUnavailable means the backend cannot run here.
	StatusUnavailable Status = iota
	// StatusAvailable means the backend can drive the real pointer.
	StatusAvailable
	// StatusSimulated means actions are only logged.
	StatusSimulated
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusSimulated:
		return "simulated"
	default:
		return "unavailable"
	}
}

// Probe is the capability check result for one backend.
type Probe struct {
	Name   string
	Status Status
	Reason string
}

// Env is the part of the host the probes look at.
type Env struct {
	GOOS     string
	Headless bool
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

// HostEnv describes the running process.
func HostEnv(headless bool) Env {
	return Env{
		GOOS:     runtime.GOOS,
		Headless: headless,
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
	}
}

func (e Env) posix() bool {
	return e.GOOS != "windows" && e.GOOS != "darwin"
}

func (e Env) hasDisplay() bool {
	return e.Getenv("DISPLAY") != "" || e.Getenv("WAYLAND_DISPLAY") != ""
}

// ProbeRobotgo checks whether robotgo can reach a display.
func ProbeRobotgo(e Env) Probe {
	p := Probe{Name: NameRobotgo}
	switch {
	case e.Headless:
		p.Reason = "headless mode requested"
	case e.posix() && e.Getenv("DISPLAY") == "":
		p.Reason = "no X11 DISPLAY"
	default:
		p.Status = StatusAvailable
	}
	return p
}

// ProbeXdotool checks whether the xdotool binary and a display are present.
func ProbeXdotool(e Env) Probe {
	p := Probe{Name: NameXdotool}
	switch {
	case e.Headless:
		p.Reason = "headless mode requested"
	case !e.posix():
		p.Reason = "xdotool is Linux only"
	case !e.hasDisplay():
		p.Reason = "no display"
	default:
		if _, err := e.LookPath("xdotool"); err != nil {
			p.Reason = "xdotool not found in PATH"
		} else {
			p.Status = StatusAvailable
		}
	}
	return p
}

// Selection is the outcome of backend selection.
type Selection struct {
	// Active is the backend actions go to first.
	Active Automator
	// Secondary receives actions the active backend fails on.
	Secondary Automator
	// Status is the status of Active.
	Status Status
	Probes []Probe
}

// openers builds concrete backends by name. Tests replace it.
var openers = map[string]func() Automator{
	NameRobotgo: func() Automator { return NewRobotgo() },
	NameXdotool: func() Automator { return NewXdotool() },
}

// Choose picks the backend name to use. It returns NameSim when nothing real is available.
//
// An available explicit preference wins. Without one, Linux prefers xdotool
// (it also works under XWayland setups where robotgo misbehaves), then
// robotgo, then xdotool.
func Choose(preferred string, e Env, probes []Probe) string {
	available := make(map[string]bool, len(probes))
	for _, p := range probes {
		available[p.Name] = p.Status == StatusAvailable
	}

	if preferred == NameSim {
		return NameSim
	}
	if preferred != "" && available[preferred] {
		return preferred
	}
	if preferred == "" && e.GOOS == "linux" && available[NameXdotool] {
		return NameXdotool
	}
	for _, name := range []string{NameRobotgo, NameXdotool} {
		if available[name] {
			return name
		}
	}
	return NameSim
}

// Select probes the backends and builds the active and secondary backends.
func Select(preferred string, e Env) Selection {
	probes := []Probe{ProbeRobotgo(e), ProbeXdotool(e)}
	for _, p := range probes {
		if p.Status != StatusAvailable {
			log.Printf("Backend %s unavailable: %s", p.Name, p.Reason)
		}
	}

	name := Choose(preferred, e, probes)
	if preferred != "" && preferred != name {
		log.Printf("Preferred backend %q is not available, using %q", preferred, name)
	}

	sel := Selection{Probes: probes}
	if name == NameSim {
		sim := NewSim(DisplaySize())
		sel.Active = sim
		sel.Secondary = sim
		sel.Status = StatusSimulated
		log.Println("No GUI mouse backend available. Running in simulation mode (no real mouse control).")
		return sel
	}

	sel.Active = openers[name]()
	sel.Status = StatusAvailable
	log.Printf("Using '%s' backend for mouse control.", name)

	for _, p := range probes {
		if p.Name != name && p.Status == StatusAvailable {
			sel.Secondary = openers[p.Name]()
			break
		}
	}
	if sel.Secondary == nil {
		sel.Secondary = NewSim(sel.Active.ScreenSize())
	}
	return sel
}

// screenOrDefault guards against backends that report a zero-sized screen.
func screenOrDefault(s pointer.Screen) pointer.Screen {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultScreen
	}
	return s
}
