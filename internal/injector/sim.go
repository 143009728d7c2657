package injector

import (
	"log"
	"sync"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/ayusman/handcursor/internal/pointer"
)

// simMoveLogInterval throttles move logging so a 30 FPS loop stays readable.
const simMoveLogInterval = 100 * time.Millisecond

// Sim records actions instead of performing them.
type Sim struct {
	mu      sync.Mutex
	screen  pointer.Screen
	pos     pointer.Point
	moves   []pointer.Point
	clicks  int
	typed   []string
	keys    []string
	lastLog time.Time

	// Logf receives the [SIM] lines. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewSim returns a simulated backend reporting the given screen.
func NewSim(screen pointer.Screen) *Sim {
	return &Sim{
		screen: screenOrDefault(screen),
		Logf:   log.Printf,
	}
}

func (s *Sim) Name() string { return NameSim }

func (s *Sim) Move(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pos = pointer.Point{X: x, Y: y}
	s.moves = append(s.moves, s.pos)

	if now := time.Now(); now.Sub(s.lastLog) >= simMoveLogInterval {
		s.lastLog = now
		s.Logf("[SIM] Move -> (%d, %d)", x, y)
	}
	return nil
}

func (s *Sim) Click() error {
	return s.ClickButton(ButtonLeft, false)
}

func (s *Sim) ScreenSize() pointer.Screen {
	return s.screen
}

func (s *Sim) Location() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.X, s.pos.Y, nil
}

func (s *Sim) Press(b Button) error {
	s.Logf("[SIM] %s down", b)
	return nil
}

func (s *Sim) Release(b Button) error {
	s.Logf("[SIM] %s up", b)
	return nil
}

func (s *Sim) ClickButton(b Button, double bool) error {
	s.mu.Lock()
	s.clicks++
	s.mu.Unlock()

	if double {
		s.Logf("[SIM] Double %s click", b)
	} else if b == ButtonLeft {
		s.Logf("[SIM] Click")
	} else {
		s.Logf("[SIM] %s click", b)
	}
	return nil
}

func (s *Sim) Scroll(amount int) error {
	s.Logf("[SIM] Scroll %d", amount)
	return nil
}

func (s *Sim) TypeText(text string) error {
	s.mu.Lock()
	s.typed = append(s.typed, text)
	s.mu.Unlock()
	s.Logf("[SIM] Type %q", text)
	return nil
}

func (s *Sim) KeyTap(key string, modifiers ...string) error {
	combo := key
	for i := len(modifiers) - 1; i >= 0; i-- {
		combo = modifiers[i] + "+" + combo
	}
	s.mu.Lock()
	s.keys = append(s.keys, combo)
	s.mu.Unlock()
	s.Logf("[SIM] Key %s", combo)
	return nil
}

// Moves returns every recorded move.
func (s *Sim) Moves() []pointer.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pointer.Point(nil), s.moves...)
}

// Clicks returns the number of recorded clicks.
func (s *Sim) Clicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks
}

// Typed returns every string passed to TypeText.
func (s *Sim) Typed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.typed...)
}

// Keys returns every key combo passed to KeyTap, formatted as "mod+key".
func (s *Sim) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// DisplaySize reports the primary display bounds, or DefaultScreen when no display can be queried.
func DisplaySize() (screen pointer.Screen) {
	defer func() {
		if recover() != nil {
			screen = DefaultScreen
		}
	}()

	if screenshot.NumActiveDisplays() < 1 {
		return DefaultScreen
	}
	b := screenshot.GetDisplayBounds(0)
	return screenOrDefault(pointer.Screen{Width: b.Dx(), Height: b.Dy()})
}
