package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handcursor/internal/store"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	sess := &store.Session{Mode: store.ModeGesture}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Events().Record([]store.Event{{SessionID: sess.ID, Kind: store.EventGesture, Label: "Fist"}}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. List sessions
	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID   string `json:"id"`
			Mode string `json:"mode"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].Mode != "gesture" {
		t.Fatalf("sessions = %+v, want one gesture session", listed.Sessions)
	}

	// 2. Read its events
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID + "/events")
	var events struct {
		Events []struct {
			Kind  string `json:"kind"`
			Label string `json:"label"`
		} `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&events)
	resp.Body.Close()

	if len(events.Events) != 1 || events.Events[0].Label != "Fist" {
		t.Errorf("events = %+v", events.Events)
	}

	// 3. Delete it
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+sess.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 4. Verify it is gone
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestPointerFeed_BroadcastsToWebsocketClients(t *testing.T) {
	feed := NewFeed()
	ts := httptest.NewServer(New(Config{Feed: feed}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/pointer"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for feed.Hub().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	feed.Publish(map[string]any{"type": "pointer", "x": 640, "y": 360, "click": true})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg struct {
		Type  string `json:"type"`
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Click bool   `json:"click"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if msg.Type != "pointer" || msg.X != 640 || msg.Y != 360 || !msg.Click {
		t.Errorf("message = %+v", msg)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for feed.Hub().Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStream_ServesLatestFrame(t *testing.T) {
	feed := NewFeed()
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	feed.Frames().Set(jpeg)

	ts := httptest.NewServer(New(Config{Feed: feed}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	want := []string{"--frame\r\n", "Content-Type: image/jpeg\r\n", "Content-Length: 4\r\n", "\r\n"}
	for _, w := range want {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("ReadString() error = %v", err)
		}
		if line != w {
			t.Errorf("line = %q, want %q", line, w)
		}
	}

	body := make([]byte, len(jpeg))
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(body) != string(jpeg) {
		t.Errorf("frame = %x, want %x", body, jpeg)
	}
}

func TestFrameBuffer(t *testing.T) {
	var b FrameBuffer
	if data, seq := b.Latest(); data != nil || seq != 0 {
		t.Errorf("empty buffer Latest() = %v, %d", data, seq)
	}

	b.Set([]byte("a"))
	b.Set([]byte("bc"))
	data, seq := b.Latest()
	if string(data) != "bc" || seq != 2 {
		t.Errorf("Latest() = %q, %d, want bc, 2", data, seq)
	}
}

func TestFeed_PublishWithoutClients(t *testing.T) {
	feed := NewFeed()
	// Values that cannot be encoded are dropped silently when nobody listens.
	feed.Publish(make(chan int))
	if feed.Hub().Clients() != 0 {
		t.Error("no clients expected")
	}
}
