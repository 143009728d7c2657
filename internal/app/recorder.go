package app

import (
	"log"

	"github.com/ayusman/handcursor/internal/store"
)

// eventBatch is how many events are buffered before they are written.
const eventBatch = 64

// recorder buffers one session's events and counters. Storage errors are
// logged and never stop a loop.
type recorder struct {
	store    *store.Store
	session  *store.Session
	pending  []store.Event
	counters store.Counters
}

// startRecorder creates the session row. With a nil store it only counts.
func startRecorder(st *store.Store, mode store.Mode, backend, status string) *recorder {
	r := &recorder{store: st}
	if st == nil {
		return r
	}

	sess := &store.Session{Mode: mode, Backend: backend, Status: status}
	if err := st.Sessions().Create(sess); err != nil {
		log.Printf("Failed to create %s session: %v", mode, err)
		r.store = nil
		return r
	}
	r.session = sess
	log.Printf("Recording %s session %s", mode, sess.ID)
	return r
}

// SessionID is empty when nothing is being recorded.
func (r *recorder) SessionID() string {
	if r.session == nil {
		return ""
	}
	return r.session.ID
}

func (r *recorder) event(e store.Event) {
	if r.session == nil {
		return
	}
	e.SessionID = r.session.ID
	r.pending = append(r.pending, e)
	if len(r.pending) >= eventBatch {
		r.flush()
	}
}

func (r *recorder) flush() {
	if r.session == nil || len(r.pending) == 0 {
		return
	}
	if err := r.store.Events().Record(r.pending); err != nil {
		log.Printf("Failed to record %d events: %v", len(r.pending), err)
	}
	r.pending = r.pending[:0]
}

// finish writes pending events and the final counters.
func (r *recorder) finish() {
	if r.session == nil {
		return
	}
	r.flush()
	if err := r.store.Sessions().Finish(r.session.ID, r.counters); err != nil {
		log.Printf("Failed to finish session %s: %v", r.session.ID, err)
	}
}
