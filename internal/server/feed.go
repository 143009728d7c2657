package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Feed connects a frame loop to the status server. It satisfies the
// loop's publisher interface.
type Feed struct {
	hub    *Hub
	frames *FrameBuffer

	mu        sync.Mutex
	lastFrame time.Time
	interval  time.Duration
}

// NewFeed creates a Feed that encodes at most one preview frame per StreamInterval.
func NewFeed() *Feed {
	return &Feed{
		hub:      NewHub(),
		frames:   &FrameBuffer{},
		interval: StreamInterval,
	}
}

// Hub returns the websocket hub messages are broadcast on.
func (f *Feed) Hub() *Hub { return f.hub }

// Frames returns the buffer holding the latest encoded frame.
func (f *Feed) Frames() *FrameBuffer { return f.frames }

// Publish broadcasts msg as JSON to websocket clients.
func (f *Feed) Publish(msg any) {
	if f.hub.Clients() == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to encode feed message: %v", err)
		return
	}
	f.hub.Broadcast(data)
}

// Frame JPEG-encodes img into the frame buffer, skipping frames that
// arrive faster than the stream rate.
func (f *Feed) Frame(img gocv.Mat) {
	f.mu.Lock()
	now := time.Now()
	if now.Sub(f.lastFrame) < f.interval {
		f.mu.Unlock()
		return
	}
	f.lastFrame = now
	f.mu.Unlock()

	if img.Empty() {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	f.frames.Set(data)
}
