package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/ports"
)

type contextEntry struct {
	mu         sync.Mutex
	call       *domain.CallContext
	terminalAt time.Time
}

// ContextStore is the process-wide owner of per-call conversation state.
// Each entry carries its own mutex so that concurrent webhook deliveries
// for the same SID serialize on transcript mutation without contending
// with other calls. The outer lock only guards the map itself.
//
// Contexts for finished calls are evicted by a background sweep a fixed
// retention period after MarkTerminal; contexts that never reach a
// terminal status persist for the life of the process.
type ContextStore struct {
	mu        sync.RWMutex
	entries   map[string]*contextEntry
	retention time.Duration
	log       *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewContextStore creates a store sweeping terminal contexts every
// sweepInterval once they are older than retention.
func NewContextStore(retention, sweepInterval time.Duration, log *zap.Logger) *ContextStore {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	s := &ContextStore{
		entries:   make(map[string]*contextEntry),
		retention: retention,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go s.sweepLoop(sweepInterval)

	return s
}

var _ ports.ContextStore = (*ContextStore)(nil)

// Create inserts a context for the SID. No-op returning false when one
// already exists.
func (s *ContextStore) Create(callSid string, call *domain.CallContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[callSid]; exists {
		return false
	}
	s.entries[callSid] = &contextEntry{call: cloneContext(call)}
	return true
}

// Get returns a snapshot of the context. Callers never alias store
// memory, so no lock is held while they use the result.
func (s *ContextStore) Get(callSid string) (*domain.CallContext, bool) {
	s.mu.RLock()
	entry, ok := s.entries[callSid]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneContext(entry.call), true
}

// AppendTurn appends a turn to the transcript under the entry's lock.
// A turn whose role matches the last recorded turn is dropped: that only
// happens on duplicate webhook delivery, and dropping it preserves the
// strict agent/counterparty alternation.
func (s *ContextStore) AppendTurn(callSid string, turn domain.Turn) error {
	s.mu.RLock()
	entry, ok := s.entries[callSid]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.call.LastRole() == turn.Role {
		s.log.Debug("Dropping duplicate same-role turn",
			zap.String("call_sid", callSid),
			zap.String("role", string(turn.Role)),
		)
		return nil
	}

	entry.call.Transcript = append(entry.call.Transcript, turn)
	return nil
}

// SetScriptAudio records the cache id of the opening script's synthesis.
func (s *ContextStore) SetScriptAudio(callSid, audioID string) error {
	s.mu.RLock()
	entry, ok := s.entries[callSid]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.call.ScriptAudioID = audioID
	return nil
}

// MarkTerminal stamps the entry for retention eviction. Unknown SIDs and
// repeated marks are no-ops.
func (s *ContextStore) MarkTerminal(callSid string) {
	s.mu.RLock()
	entry, ok := s.entries[callSid]
	s.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.terminalAt.IsZero() {
		entry.terminalAt = time.Now()
	}
}

// Len reports the number of stored contexts.
func (s *ContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the background sweep.
func (s *ContextStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *ContextStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *ContextStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for sid, entry := range s.entries {
		entry.mu.Lock()
		expired := !entry.terminalAt.IsZero() && now.Sub(entry.terminalAt) >= s.retention
		entry.mu.Unlock()
		if expired {
			delete(s.entries, sid)
			evicted++
		}
	}

	if evicted > 0 {
		s.log.Info("Evicted terminal call contexts",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(s.entries)),
		)
	}
}

func cloneContext(call *domain.CallContext) *domain.CallContext {
	clone := *call
	clone.Transcript = make([]domain.Turn, len(call.Transcript))
	copy(clone.Transcript, call.Transcript)
	return &clone
}
