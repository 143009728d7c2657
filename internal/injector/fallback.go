package injector

import (
	"log"
	"sync"

	"github.com/ayusman/handcursor/internal/pointer"
)

// MaxPrimaryFailures is how many consecutive failures make Fallback drop the primary backend.
const MaxPrimaryFailures = 3

// Fallback sends actions to a primary backend and retries them on a
// secondary one when the primary fails. After MaxPrimaryFailures
// consecutive failures it switches to the secondary for good. Errors from
// the last backend in line are logged and swallowed so the caller's loop
// keeps running.
type Fallback struct {
	mu        sync.Mutex
	primary   Automator
	secondary Automator
	failures  int
	switched  bool

	// Logf receives fallback messages. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewFallback wraps primary with secondary. A nil secondary means a Sim.
func NewFallback(primary, secondary Automator) *Fallback {
	if secondary == nil {
		secondary = NewSim(primary.ScreenSize())
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		Logf:      log.Printf,
	}
}

// Active returns the backend currently receiving actions first.
func (f *Fallback) Active() Automator {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.switched {
		return f.secondary
	}
	return f.primary
}

func (f *Fallback) Name() string {
	return f.Active().Name()
}

func (f *Fallback) ScreenSize() pointer.Screen {
	return f.Active().ScreenSize()
}

// do runs op against the active backend and, on failure, against the secondary.
func (f *Fallback) do(what string, op func(Automator) error) error {
	f.mu.Lock()
	switched := f.switched
	f.mu.Unlock()

	if switched {
		if err := op(f.secondary); err != nil {
			f.Logf("[SIM FALLBACK] %s %s failed: %v", f.secondary.Name(), what, err)
		}
		return nil
	}

	err := op(f.primary)
	f.mu.Lock()
	if err == nil {
		f.failures = 0
		f.mu.Unlock()
		return nil
	}
	f.failures++
	if f.failures >= MaxPrimaryFailures && !f.switched {
		f.switched = true
		f.Logf("[BACKEND FALLBACK] %s failed %d times in a row, switching to %s",
			f.primary.Name(), f.failures, f.secondary.Name())
	}
	f.mu.Unlock()

	f.Logf("[BACKEND FALLBACK] %s %s failed: %v", f.primary.Name(), what, err)
	if err := op(f.secondary); err != nil {
		f.Logf("[SIM FALLBACK] %s %s failed: %v", f.secondary.Name(), what, err)
	}
	return nil
}

func (f *Fallback) Move(x, y int) error {
	return f.do("move", func(a Automator) error { return a.Move(x, y) })
}

func (f *Fallback) Click() error {
	return f.do("click", func(a Automator) error { return a.Click() })
}

func (f *Fallback) Location() (int, int, error) {
	x, y, err := f.Active().Location()
	if err != nil {
		return f.secondary.Location()
	}
	return x, y, nil
}

func (f *Fallback) Press(b Button) error {
	return f.do("press", func(a Automator) error { return a.Press(b) })
}

func (f *Fallback) Release(b Button) error {
	return f.do("release", func(a Automator) error { return a.Release(b) })
}

func (f *Fallback) ClickButton(b Button, double bool) error {
	return f.do("click", func(a Automator) error { return a.ClickButton(b, double) })
}

func (f *Fallback) Scroll(amount int) error {
	return f.do("scroll", func(a Automator) error { return a.Scroll(amount) })
}

func (f *Fallback) TypeText(s string) error {
	return f.do("type", func(a Automator) error { return a.TypeText(s) })
}

func (f *Fallback) KeyTap(key string, modifiers ...string) error {
	return f.do("key", func(a Automator) error { return a.KeyTap(key, modifiers...) })
}
