package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_CreateGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Mode: ModeCursor, Backend: "sim", Status: "simulated"}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Create() should assign an ID")
	}
	if sess.StartedAt.IsZero() {
		t.Error("Create() should set StartedAt")
	}

	got, err := repo.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Mode != ModeCursor || got.Backend != "sim" || got.Status != "simulated" {
		t.Errorf("Get() = %+v", got)
	}
	if got.EndedAt != nil {
		t.Error("EndedAt should be nil before Finish")
	}
}

func TestSessionRepository_InvalidMode(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sessions().Create(&Session{Mode: "juggling"}); err == nil {
		t.Error("Create() should reject an unknown mode")
	}
}

func TestSessionRepository_Finish(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Mode: ModeGesture}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	c := Counters{Frames: 300, Moves: 120, Clicks: 2, Detections: 250}
	if err := repo.Finish(sess.ID, c); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	got, err := repo.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Frames != 300 || got.Moves != 120 || got.Clicks != 2 || got.Detections != 250 {
		t.Errorf("counters = %+v", got)
	}
	if got.EndedAt == nil {
		t.Error("EndedAt should be set after Finish")
	}

	if err := repo.Finish("missing", c); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Sessions().Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, mode := range []Mode{ModeCursor, ModeFace, ModeTour} {
		sess := &Session{Mode: mode, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(sess); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(0) returned %d sessions, want 3", len(all))
	}
	if all[0].Mode != ModeTour || all[2].Mode != ModeCursor {
		t.Errorf("List() order = %s, %s, %s, want newest first", all[0].Mode, all[1].Mode, all[2].Mode)
	}

	two, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(two) != 2 {
		t.Errorf("List(2) returned %d sessions", len(two))
	}
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Mode: ModeCursor}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Events().Record([]Event{{SessionID: sess.ID, Kind: EventClick}}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := s.Sessions().Delete(sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	events, err := s.Events().ListBySession(sess.ID, "")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events should be deleted with their session, got %d", len(events))
	}

	if err := s.Sessions().Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
