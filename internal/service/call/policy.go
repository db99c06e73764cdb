package call

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/ports"
)

// FallbackLine is spoken when the generative backend fails. A dialogue
// turn must never abort the call, so every failure mode collapses to
// this one sentence.
const FallbackLine = "I hear you. I'd love to set up a quick follow-up so we can go over the details. Would later this week work for you?"

// RulePolicy is the deterministic dialogue policy: it keyword-matches the
// counterparty's utterance against fixed categories and answers with a
// canned line. No external calls, cannot fail.
type RulePolicy struct{}

func NewRulePolicy() *RulePolicy {
	return &RulePolicy{}
}

var _ ports.DialoguePolicy = (*RulePolicy)(nil)

type ruleCategory struct {
	keywords []string
	response string
}

// Match order matters: "not interested" must hit the negative category
// before "interested" can hit the affirmative one.
var ruleCategories = []ruleCategory{
	{
		keywords: []string{"no", "nope", "nah", "not interested", "not right now"},
		response: "I totally get it - you're probably busy. No pressure at all. Is there maybe a better time I could reach out? Or if you change your mind, just let me know!",
	},
	{
		keywords: []string{"hello", "hi", "hey", "what's up"},
		response: "Hey! Thanks for picking up. I'm calling because I think I can really help your business grow. Are you open to hearing about some upgrade options?",
	},
	{
		keywords: []string{"yes", "yeah", "sure", "okay", "ok", "yep", "sounds good", "interested"},
		response: "Awesome! I'm excited to help you out. So, what kind of business are you running? I'd love to understand what you do so I can tailor the best solution for you.",
	},
	{
		keywords: []string{"cost", "price", "how much", "expensive", "money", "afford"},
		response: "I totally understand wanting to know about pricing. The cool thing is we have different options depending on what you need, and honestly, a lot of businesses see it pay for itself pretty quickly. Would you be open to a quick chat where we can go over the numbers?",
	},
	{
		keywords: []string{"schedule", "call", "meeting", "time", "when", "later", "tomorrow"},
		response: "Perfect! I'd love to set something up. What works better for you - are you free later today, or would tomorrow be better?",
	},
	{
		keywords: []string{"bye", "goodbye", "thanks", "thank you", "gotta go", "have to go"},
		response: "Absolutely! Thanks so much for your time today. I really appreciate you hearing me out. Have an amazing day!",
	},
}

const probingResponse = "I hear you. I genuinely think we can help your business, and I'd love to show you how. What do you say - want to hear a bit more about what we can do for you?"

// NextTurn matches the utterance against the rule table. Unknown or
// empty input falls through to a generic probing response.
func (p *RulePolicy) NextTurn(ctx context.Context, utterance string, call *domain.CallContext) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	for _, cat := range ruleCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.response, nil
			}
		}
	}
	return probingResponse, nil
}

// chatCompleter is the slice of the OpenAI client the generative policy
// and the classifier use; tests substitute a stub.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GenerativePolicy asks a chat model for the next turn, constrained to a
// single short sentence steering toward a booked follow-up. Provider
// failures degrade to FallbackLine instead of propagating.
type GenerativePolicy struct {
	client chatCompleter
	model  string
	log    *zap.Logger
}

// NewGenerativePolicy creates the model-backed policy.
func NewGenerativePolicy(apiKey, model string, log *zap.Logger) *GenerativePolicy {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &GenerativePolicy{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}
}

var _ ports.DialoguePolicy = (*GenerativePolicy)(nil)

func (p *GenerativePolicy) systemPrompt(call *domain.CallContext) string {
	var b strings.Builder
	b.WriteString("You are a friendly outbound sales agent on a live phone call")
	if call.CompanyName != "" {
		fmt.Fprintf(&b, " with %s", call.CompanyName)
	}
	b.WriteString(". ")
	if call.Category != "" {
		fmt.Fprintf(&b, "They run a %s business. ", strings.ToLower(call.Category))
	}
	if call.Summary != "" {
		fmt.Fprintf(&b, "Background: %s ", call.Summary)
	}
	b.WriteString("Reply with exactly one short spoken sentence. ")
	b.WriteString("Your goal is to book a follow-up call. ")
	b.WriteString("If they agree to a follow-up or want to end the call, thank them warmly and wrap up.")
	return b.String()
}

// NextTurn builds a prompt from the running transcript and business
// attributes and returns the model's next line.
func (p *GenerativePolicy) NextTurn(ctx context.Context, utterance string, call *domain.CallContext) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: p.systemPrompt(call)},
	}
	for _, turn := range call.Transcript {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.RoleAgent {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	// The utterance is normally already the transcript's last turn; cover
	// the case where the caller hands it in separately.
	if u := strings.TrimSpace(utterance); u != "" && call.LastRole() != domain.RoleCounterparty {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: u})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   60,
		Temperature: 0.7,
	})
	if err != nil {
		p.log.Warn("Generative policy failed, using fallback line", zap.Error(err))
		return FallbackLine, nil
	}
	if len(resp.Choices) == 0 {
		p.log.Warn("Generative policy returned no choices, using fallback line")
		return FallbackLine, nil
	}

	line := strings.TrimSpace(resp.Choices[0].Message.Content)
	if line == "" {
		return FallbackLine, nil
	}
	return line, nil
}

// NewDialoguePolicy selects the policy implementation by mode. Anything
// other than "generative" gets the rule-based policy.
func NewDialoguePolicy(mode, apiKey, model string, log *zap.Logger) ports.DialoguePolicy {
	if mode == "generative" {
		return NewGenerativePolicy(apiKey, model, log)
	}
	return NewRulePolicy()
}
