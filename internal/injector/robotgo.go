package injector

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/handcursor/internal/pointer"
)

// Robotgo drives the pointer and keyboard through robotgo.
type Robotgo struct{}

// NewRobotgo returns a robotgo backend. Call ProbeRobotgo first: robotgo
// aborts the process when no display can be opened.
func NewRobotgo() *Robotgo {
	robotgo.MouseSleep = 0
	robotgo.KeySleep = 0
	return &Robotgo{}
}

func (r *Robotgo) Name() string { return NameRobotgo }

func (r *Robotgo) Move(x, y int) (err error) {
	defer recoverAs(&err, "move")
	robotgo.Move(x, y)
	return nil
}

func (r *Robotgo) Click() error {
	return r.ClickButton(ButtonLeft, false)
}

func (r *Robotgo) ScreenSize() pointer.Screen {
	w, h := robotgo.GetScreenSize()
	return screenOrDefault(pointer.Screen{Width: w, Height: h})
}

func (r *Robotgo) Location() (x, y int, err error) {
	defer recoverAs(&err, "location")
	x, y = robotgo.Location()
	return x, y, nil
}

func (r *Robotgo) Press(b Button) error {
	return robotgo.Toggle(string(b))
}

func (r *Robotgo) Release(b Button) error {
	return robotgo.Toggle(string(b), "up")
}

func (r *Robotgo) ClickButton(b Button, double bool) (err error) {
	defer recoverAs(&err, "click")
	robotgo.Click(string(b), double)
	return nil
}

func (r *Robotgo) Scroll(amount int) (err error) {
	defer recoverAs(&err, "scroll")
	robotgo.Scroll(0, amount)
	return nil
}

func (r *Robotgo) TypeText(s string) (err error) {
	defer recoverAs(&err, "type")
	robotgo.TypeStr(s)
	return nil
}

func (r *Robotgo) KeyTap(key string, modifiers ...string) error {
	if len(modifiers) == 0 {
		return robotgo.KeyTap(key)
	}
	return robotgo.KeyTap(key, modifiers)
}

// recoverAs turns a panic from the native layer into an error.
func recoverAs(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("robotgo %s: %v", op, r)
	}
}
