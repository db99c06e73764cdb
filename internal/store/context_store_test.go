package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
)

func newTestStore() *ContextStore {
	return NewContextStore(30*time.Minute, time.Hour, zap.NewNop())
}

func seededContext(script string) *domain.CallContext {
	return &domain.CallContext{
		CompanyName: "Blue Bottle Coffee",
		Category:    "Cafe",
		Script:      script,
		Transcript:  []domain.Turn{{Role: domain.RoleAgent, Text: script}},
	}
}

func TestContextStore_CreateIsNoOpWhenExists(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	if !s.Create("CA123", seededContext("hello")) {
		t.Fatal("expected first create to succeed")
	}
	if s.Create("CA123", seededContext("other")) {
		t.Fatal("expected second create to be a no-op")
	}

	call, ok := s.Get("CA123")
	if !ok {
		t.Fatal("expected context to exist")
	}
	if call.Script != "hello" {
		t.Errorf("expected original script to survive, got %q", call.Script)
	}
}

func TestContextStore_GetMissingIsNotAnError(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	if _, ok := s.Get("CAunknown"); ok {
		t.Fatal("expected missing context to report ok=false")
	}
}

func TestContextStore_GetReturnsSnapshot(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Create("CA123", seededContext("hi"))
	call, _ := s.Get("CA123")
	call.Transcript[0].Text = "mutated"
	call.Transcript = append(call.Transcript, domain.Turn{Role: domain.RoleCounterparty, Text: "x"})

	fresh, _ := s.Get("CA123")
	if len(fresh.Transcript) != 1 || fresh.Transcript[0].Text != "hi" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestContextStore_AppendTurnNotFound(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	err := s.AppendTurn("CAmissing", domain.Turn{Role: domain.RoleCounterparty, Text: "yes"})
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContextStore_TranscriptAlternates(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Create("CA123", seededContext("opening"))
	for i := 0; i < 5; i++ {
		s.AppendTurn("CA123", domain.Turn{Role: domain.RoleCounterparty, Text: fmt.Sprintf("human %d", i)})
		s.AppendTurn("CA123", domain.Turn{Role: domain.RoleAgent, Text: fmt.Sprintf("agent %d", i)})
	}

	call, _ := s.Get("CA123")
	assertAlternating(t, call.Transcript)
	if len(call.Transcript) != 11 {
		t.Errorf("expected 11 turns, got %d", len(call.Transcript))
	}
}

func TestContextStore_DuplicateDeliveryPreservesAlternation(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Create("CA123", seededContext("opening"))

	// Simulate the provider delivering the same utterance twice.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendTurn("CA123", domain.Turn{Role: domain.RoleCounterparty, Text: "yes"})
		}()
	}
	wg.Wait()
	s.AppendTurn("CA123", domain.Turn{Role: domain.RoleAgent, Text: "great"})

	call, _ := s.Get("CA123")
	assertAlternating(t, call.Transcript)
	if len(call.Transcript) != 3 {
		t.Errorf("expected 3 turns after duplicate delivery, got %d", len(call.Transcript))
	}
}

func TestContextStore_SweepEvictsTerminalContexts(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Create("CAdone", seededContext("a"))
	s.Create("CAlive", seededContext("b"))
	s.MarkTerminal("CAdone")
	s.MarkTerminal("CAdone") // repeated marks are no-ops

	s.sweep(time.Now().Add(time.Hour))

	if _, ok := s.Get("CAdone"); ok {
		t.Error("expected terminal context to be evicted")
	}
	if _, ok := s.Get("CAlive"); !ok {
		t.Error("expected in-progress context to survive the sweep")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 remaining context, got %d", s.Len())
	}
}

func assertAlternating(t *testing.T, transcript []domain.Turn) {
	t.Helper()
	if len(transcript) == 0 {
		t.Fatal("expected non-empty transcript")
	}
	if transcript[0].Role != domain.RoleAgent {
		t.Fatalf("expected transcript to start with agent, got %s", transcript[0].Role)
	}
	for i := 1; i < len(transcript); i++ {
		if transcript[i].Role == transcript[i-1].Role {
			t.Fatalf("turns %d and %d share role %s", i-1, i, transcript[i].Role)
		}
	}
}

func TestContextStore_SetScriptAudio(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	if err := s.SetScriptAudio("CA404", "audio-1"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown sid, got %v", err)
	}

	s.Create("CA1", seededContext("hello"))
	if err := s.SetScriptAudio("CA1", "audio-1"); err != nil {
		t.Fatalf("SetScriptAudio failed: %v", err)
	}

	call, _ := s.Get("CA1")
	if call.ScriptAudioID != "audio-1" {
		t.Errorf("expected audio id on snapshot, got %q", call.ScriptAudioID)
	}
}
