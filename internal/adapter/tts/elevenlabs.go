// Package tts synthesizes speech through the ElevenLabs API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voxdial/internal/ports"
)

// DefaultAPIBaseURL is the ElevenLabs API root.
const DefaultAPIBaseURL = "https://api.elevenlabs.io"

// Voice parameters tuned for a natural phone-call delivery.
const (
	modelID         = "eleven_turbo_v2_5"
	stability       = 0.4
	similarityBoost = 0.75
	style           = 0.3
)

// ElevenLabsClient implements ports.SpeechSynthesizer.
type ElevenLabsClient struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *circuitbreaker.HTTPClient
	log        *zap.Logger
}

// Config carries the ElevenLabs credentials and endpoint.
type Config struct {
	APIKey     string
	VoiceID    string
	APIBaseURL string
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// NewElevenLabsClient creates the synthesizer client.
func NewElevenLabsClient(cfg Config, log *zap.Logger) *ElevenLabsClient {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	return &ElevenLabsClient{
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		baseURL:    baseURL,
		httpClient: circuitbreaker.NewHTTPClient(circuitbreaker.DefaultSettings("elevenlabs"), log),
		log:        log,
	}
}

var _ ports.SpeechSynthesizer = (*ElevenLabsClient)(nil)

// Synthesize converts text to audio bytes (audio/mpeg). Missing
// credentials fail before any network call; provider rejections carry the
// raw response body for diagnosis.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var missing []string
	if c.apiKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if c.voiceID == "" {
		missing = append(missing, "ELEVENLABS_VOICE_ID")
	}
	if len(missing) > 0 {
		return nil, domain.NewConfigError(missing...)
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: modelID,
		VoiceSettings: voiceSettings{
			Stability:       stability,
			SimilarityBoost: similarityBoost,
			Style:           style,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: create request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "elevenlabs", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ProviderError{
			Provider: "elevenlabs",
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	c.log.Debug("Synthesized speech",
		zap.Int("text_chars", len(text)),
		zap.Int("audio_bytes", len(body)),
	)
	return body, nil
}
