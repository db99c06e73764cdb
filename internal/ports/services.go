package ports

import (
	"context"

	"github.com/seu-repo/voxdial/internal/domain"
)

// TelephonyProvider abstracts the external call provider.
type TelephonyProvider interface {
	// CreateCall originates an outbound call and returns the provider's
	// call SID. webhookURL is invoked by the provider on every
	// conversational step.
	CreateCall(ctx context.Context, to, webhookURL string) (string, error)
	// FetchCall returns the provider's current view of a call.
	FetchCall(ctx context.Context, callSid string) (*domain.CallStatusInfo, error)
}

// SpeechSynthesizer converts text to an audio payload.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// DialoguePolicy produces the agent's next spoken turn given the
// counterparty's utterance and the running call context. Implementations
// must tolerate empty or malformed utterances and must never let a failed
// turn abort the call.
type DialoguePolicy interface {
	NextTurn(ctx context.Context, utterance string, call *domain.CallContext) (string, error)
}

// Classifier assigns an interest outcome to a completed transcript.
type Classifier interface {
	Classify(ctx context.Context, companyName string, transcript []domain.Turn) domain.CallOutcome
}

// CallService places calls and tracks which SIDs are in flight.
type CallService interface {
	PlaceCall(ctx context.Context, req *domain.CallRequest) (*domain.PlaceCallResult, error)
	ActiveCalls() []string
	ReleaseCall(callSid string)
	Reset()
}
