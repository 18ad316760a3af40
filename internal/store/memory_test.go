package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-assistant/internal/assistant"
)

var base = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func sessionAt(t time.Time) *assistant.Session {
	return assistant.NewSession(assistant.Config{Clock: func() time.Time { return t }})
}

func TestSessionStoreSaveGetDelete(t *testing.T) {
	s := NewSessionStore(0, 0)
	sess := sessionAt(base)
	s.Save(sess)

	got, err := s.Get(sess.ID())
	if err != nil || got != sess {
		t.Fatalf("expected saved session, got %v, %v", got, err)
	}
	if err := s.Delete(sess.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(sess.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(sess.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := sess.Send("hello"); !errors.Is(err, assistant.ErrSessionClosed) {
		t.Fatalf("deleted session should be closed, got %v", err)
	}
}

func TestSessionStoreEvictsLeastRecentlyActive(t *testing.T) {
	s := NewSessionStore(2, 0)
	oldest := sessionAt(base)
	middle := sessionAt(base.Add(time.Minute))
	newest := sessionAt(base.Add(2 * time.Minute))

	s.Save(middle)
	s.Save(oldest)
	s.Save(newest)

	if s.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", s.Len())
	}
	if _, err := s.Get(oldest.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oldest session evicted, got %v", err)
	}
	if _, err := s.Get(middle.ID()); err != nil {
		t.Fatalf("expected middle session kept: %v", err)
	}
}

func TestSessionStorePrune(t *testing.T) {
	s := NewSessionStore(0, time.Hour)
	s.now = func() time.Time { return base.Add(90 * time.Minute) }

	stale := sessionAt(base)
	fresh := sessionAt(base.Add(time.Hour))
	s.Save(stale)
	s.Save(fresh)

	if n := s.Prune(); n != 1 {
		t.Fatalf("expected 1 pruned session, got %d", n)
	}
	if _, err := s.Get(stale.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale session pruned, got %v", err)
	}
	if _, err := s.Get(fresh.ID()); err != nil {
		t.Fatalf("expected fresh session kept: %v", err)
	}
}

func TestSessionStoreClose(t *testing.T) {
	s := NewSessionStore(0, 0)
	s.Save(sessionAt(base))
	s.Save(sessionAt(base))
	s.Close()
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}
