package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
)

func TestSynthesize_Success(t *testing.T) {
	audio := []byte{0xff, 0xf3, 0x44}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "key123" {
			t.Error("expected xi-api-key header")
		}
		var req synthesisRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "Hello there" {
			t.Errorf("expected text in request, got %q", req.Text)
		}
		if req.ModelID != "eleven_turbo_v2_5" {
			t.Errorf("unexpected model: %s", req.ModelID)
		}
		if !req.VoiceSettings.UseSpeakerBoost {
			t.Error("expected speaker boost enabled")
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer srv.Close()

	c := NewElevenLabsClient(Config{APIKey: "key123", VoiceID: "voice123", APIBaseURL: srv.URL}, zap.NewNop())
	got, err := c.Synthesize(context.Background(), "Hello there")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Errorf("expected %v, got %v", audio, got)
	}
}

func TestSynthesize_MissingCredentials(t *testing.T) {
	c := NewElevenLabsClient(Config{}, zap.NewNop())
	_, err := c.Synthesize(context.Background(), "hi")
	if !domain.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	for _, name := range []string{"ELEVENLABS_API_KEY", "ELEVENLABS_VOICE_ID"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected %s in error, got %q", name, err.Error())
		}
	}
}

func TestSynthesize_ProviderErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	c := NewElevenLabsClient(Config{APIKey: "bad", VoiceID: "v", APIBaseURL: srv.URL}, zap.NewNop())
	_, err := c.Synthesize(context.Background(), "hi")
	if !domain.IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_api_key") {
		t.Errorf("expected raw provider body in error, got %q", err.Error())
	}
}
