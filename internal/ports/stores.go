package ports

import (
	"context"

	"github.com/seu-repo/voxdial/internal/domain"
)

// ContextStore owns all CallContext data for the life of the process.
// Implementations serialize mutations per call SID so that concurrent
// webhook deliveries for the same call cannot interleave transcript
// appends.
type ContextStore interface {
	// Create inserts a context for the SID. It is a no-op returning
	// false when a context already exists.
	Create(callSid string, call *domain.CallContext) bool
	// Get returns a copy of the stored context. Absence is reported via
	// the bool, not an error.
	Get(callSid string) (*domain.CallContext, bool)
	// AppendTurn appends to the transcript in place. Returns
	// domain.ErrNotFound when no context exists for the SID.
	AppendTurn(callSid string, turn domain.Turn) error
	// SetScriptAudio records the cache id of the synthesized opening
	// script. Returns domain.ErrNotFound when no context exists.
	SetScriptAudio(callSid, audioID string) error
	// MarkTerminal stamps the context for retention-based eviction.
	MarkTerminal(callSid string)
	// Len reports the number of stored contexts.
	Len() int
}

// AudioCache is a short-lived binary store keyed by opaque id. Entries
// are written once and evicted after a fixed TTL; Delete is idempotent.
type AudioCache interface {
	Put(ctx context.Context, id string, data []byte) error
	// Get returns the cached bytes or domain.ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Ping() error
	Close() error
}
