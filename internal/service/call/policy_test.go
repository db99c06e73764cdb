package call

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
)

// stubCompleter is a canned chat-completion backend for tests.
type stubCompleter struct {
	reply      string
	err        error
	gotRequest *openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.gotRequest = &req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.reply}},
		},
	}, nil
}

func TestRulePolicy_Categories(t *testing.T) {
	p := NewRulePolicy()
	ctx := context.Background()

	cases := []struct {
		utterance string
		wantPart  string
	}{
		{"hello there", "Thanks for picking up"},
		{"yes I'm interested", "Awesome!"},
		{"nah, not interested", "No pressure at all"},
		{"how much does it cost", "pricing"},
		{"can we schedule a meeting", "set something up"},
		{"thanks, goodbye", "Thanks so much for your time"},
		{"the weather is nice", "want to hear a bit more"},
	}

	for _, c := range cases {
		got, err := p.NextTurn(ctx, c.utterance, &domain.CallContext{})
		if err != nil {
			t.Fatalf("NextTurn(%q) failed: %v", c.utterance, err)
		}
		if !strings.Contains(got, c.wantPart) {
			t.Errorf("NextTurn(%q) = %q, want it to contain %q", c.utterance, got, c.wantPart)
		}
	}
}

func TestRulePolicy_NegativeBeatsAffirmative(t *testing.T) {
	p := NewRulePolicy()
	got, _ := p.NextTurn(context.Background(), "not interested", &domain.CallContext{})
	if !strings.Contains(got, "No pressure") {
		t.Errorf("expected the negative response for 'not interested', got %q", got)
	}
}

func TestRulePolicy_ToleratesEmptyInput(t *testing.T) {
	p := NewRulePolicy()
	for _, utterance := range []string{"", "   ", "\x00\xff"} {
		got, err := p.NextTurn(context.Background(), utterance, &domain.CallContext{})
		if err != nil || got == "" {
			t.Errorf("NextTurn(%q) = (%q, %v), want a non-empty response and nil error", utterance, got, err)
		}
	}
}

func TestRulePolicy_Deterministic(t *testing.T) {
	p := NewRulePolicy()
	a, _ := p.NextTurn(context.Background(), "hello", &domain.CallContext{})
	b, _ := p.NextTurn(context.Background(), "hello", &domain.CallContext{})
	if a != b {
		t.Error("expected deterministic responses")
	}
}

func TestGenerativePolicy_BuildsTranscriptPrompt(t *testing.T) {
	stub := &stubCompleter{reply: "Great, how about Tuesday at two?"}
	p := &GenerativePolicy{client: stub, model: "test-model", log: zap.NewNop()}

	call := &domain.CallContext{
		CompanyName: "Blue Bottle Coffee",
		Category:    "Cafe",
		Transcript: []domain.Turn{
			{Role: domain.RoleAgent, Text: "Hi, I'm calling Blue Bottle Coffee."},
			{Role: domain.RoleCounterparty, Text: "sure, tell me more"},
		},
	}

	got, err := p.NextTurn(context.Background(), "sure, tell me more", call)
	if err != nil {
		t.Fatalf("NextTurn failed: %v", err)
	}
	if got != "Great, how about Tuesday at two?" {
		t.Errorf("unexpected reply: %q", got)
	}

	req := stub.gotRequest
	if req == nil {
		t.Fatal("expected a chat completion request")
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem ||
		!strings.Contains(req.Messages[0].Content, "Blue Bottle Coffee") {
		t.Errorf("expected system prompt with company name, got %+v", req.Messages[0])
	}
	// transcript already ends with the utterance, so: system + 2 turns
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	if req.Messages[2].Role != openai.ChatMessageRoleUser || req.Messages[2].Content != "sure, tell me more" {
		t.Errorf("expected final user message with utterance, got %+v", req.Messages[2])
	}
}

func TestGenerativePolicy_FallsBackOnError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("rate limited")}
	p := &GenerativePolicy{client: stub, model: "test-model", log: zap.NewNop()}

	got, err := p.NextTurn(context.Background(), "hm", &domain.CallContext{})
	if err != nil {
		t.Fatalf("a failed turn must not surface an error, got %v", err)
	}
	if got != FallbackLine {
		t.Errorf("expected fallback line, got %q", got)
	}
}

func TestGenerativePolicy_FallsBackOnEmptyReply(t *testing.T) {
	stub := &stubCompleter{reply: "   "}
	p := &GenerativePolicy{client: stub, model: "test-model", log: zap.NewNop()}

	got, _ := p.NextTurn(context.Background(), "hm", &domain.CallContext{})
	if got != FallbackLine {
		t.Errorf("expected fallback line for blank reply, got %q", got)
	}
}

func TestNewDialoguePolicy_Selection(t *testing.T) {
	log := zap.NewNop()
	if _, ok := NewDialoguePolicy("rules", "", "", log).(*RulePolicy); !ok {
		t.Error("expected rules mode to select RulePolicy")
	}
	if _, ok := NewDialoguePolicy("", "", "", log).(*RulePolicy); !ok {
		t.Error("expected empty mode to default to RulePolicy")
	}
	if _, ok := NewDialoguePolicy("generative", "key", "", log).(*GenerativePolicy); !ok {
		t.Error("expected generative mode to select GenerativePolicy")
	}
}
