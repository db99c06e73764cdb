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

// OpenAIClassifier assigns an interest outcome to a finished transcript.
// The model is constrained to the three outcome literals; anything else,
// including provider failures, is coerced to unreachable so the read
// path never errors on classification.
type OpenAIClassifier struct {
	client chatCompleter
	model  string
	log    *zap.Logger
}

// NewOpenAIClassifier creates the classifier.
func NewOpenAIClassifier(apiKey, model string, log *zap.Logger) *OpenAIClassifier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}
}

var _ ports.Classifier = (*OpenAIClassifier)(nil)

func classificationPrompt(companyName string, transcript []domain.Turn) string {
	speaker := companyName
	if speaker == "" {
		speaker = "Business"
	}

	var convo strings.Builder
	for _, turn := range transcript {
		if turn.Role == domain.RoleAgent {
			convo.WriteString("AI Caller: ")
		} else {
			convo.WriteString(speaker + ": ")
		}
		convo.WriteString(turn.Text)
		convo.WriteString("\n")
	}

	return fmt.Sprintf(
		"Analyze this sales call transcript and classify the business's response.\n\n"+
			"Transcript:\n%s\n"+
			"Classify as exactly one of:\n"+
			"- \"interested\" - they showed interest, agreed to talk more, asked questions, wanted to schedule\n"+
			"- \"not_interested\" - they declined, said no, asked to be removed, hung up\n"+
			"- \"unreachable\" - no meaningful response, voicemail, couldn't connect\n\n"+
			"Return ONLY one word: interested, not_interested, or unreachable",
		convo.String(),
	)
}

// Classify runs the model over a role-labelled transcript excerpt.
func (c *OpenAIClassifier) Classify(ctx context.Context, companyName string, transcript []domain.Turn) domain.CallOutcome {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: classificationPrompt(companyName, transcript)},
		},
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		c.log.Warn("Classification failed, reporting unreachable", zap.Error(err))
		return domain.OutcomeUnreachable
	}
	if len(resp.Choices) == 0 {
		return domain.OutcomeUnreachable
	}

	return domain.ParseOutcome(cleanOutcome(resp.Choices[0].Message.Content))
}

// cleanOutcome strips everything but the literal the model was asked for.
func cleanOutcome(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
