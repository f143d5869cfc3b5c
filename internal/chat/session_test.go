package chat

import (
	"fmt"
	"testing"
	"time"
)

func TestSession_rememberWindow(t *testing.T) {
	s := &Session{ID: "sess1"}
	for i := 0; i < 5; i++ {
		s.Remember(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	// Memory holds three exchanges (six messages); older ones fall off.
	if len(s.Turns) != 3 {
		t.Fatalf("window: %d turns", len(s.Turns))
	}
	if s.Turns[0].User != "q2" || s.Turns[2].Assistant != "a4" {
		t.Errorf("window contents: %+v", s.Turns)
	}
	if got := s.QuestionsAsked(); got != 3 {
		t.Errorf("QuestionsAsked: %d", got)
	}
}

func TestSessions_getOrCreate(t *testing.T) {
	st := NewSessions()

	s := st.GetOrCreate("")
	if s.ID == "" {
		t.Fatal("empty id should mint one")
	}
	if again := st.GetOrCreate(s.ID); again != s {
		t.Error("same id should return same session")
	}
	if st.Len() != 1 {
		t.Errorf("Len: %d", st.Len())
	}

	st.Delete(s.ID)
	if _, ok := st.Get(s.ID); ok {
		t.Error("session survived Delete")
	}
}

func TestSessions_prunesStale(t *testing.T) {
	st := NewSessions()
	stale := st.GetOrCreate("old")
	stale.LastActive = time.Now().Add(-2 * sessionTTL)

	st.GetOrCreate("fresh")
	if _, ok := st.Get("old"); ok {
		t.Error("stale session not pruned")
	}
}
