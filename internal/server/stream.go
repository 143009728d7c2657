package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// StreamInterval paces the MJPEG stream at about 15 FPS.
const StreamInterval = 66 * time.Millisecond

// FrameBuffer holds the latest encoded preview frame.
type FrameBuffer struct {
	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

// Set replaces the latest frame.
func (b *FrameBuffer) Set(jpeg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jpeg = jpeg
	b.seq++
}

// Latest returns the latest frame and its sequence number. The sequence is
// zero until the first frame arrives.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jpeg, b.seq
}

// StreamHandler serves the frame buffer as MJPEG.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams each new frame to the client until it disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	var sent uint64
	for {
		if data, seq := h.frames.Latest(); seq != sent && len(data) > 0 {
			if err := writePart(w, data); err != nil {
				return
			}
			sent = seq
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
