package app

import (
	"log"
	"sync"

	hook "github.com/robotn/gohook"
)

// AbortChord is the key combination that stops the tour: ctrl+shift+q.
var AbortChord = []string{"q", "ctrl", "shift"}

// WatchAbort calls abort when the abort chord is pressed anywhere on the
// desktop. The returned stop function ends the global hook.
func WatchAbort(abort func()) (stop func()) {
	hook.Register(hook.KeyDown, AbortChord, func(e hook.Event) {
		log.Println("ctrl+shift+q pressed, aborting")
		abort()
	})

	evChan := hook.Start()
	go func() {
		// Blocks until hook.End() is called.
		<-hook.Process(evChan)
	}()

	var once sync.Once
	return func() {
		once.Do(hook.End)
	}
}
