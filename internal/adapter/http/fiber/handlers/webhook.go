package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/observability/telemetry"
	"github.com/seu-repo/voxdial/internal/ports"
	"github.com/seu-repo/voxdial/internal/service/call"
	"github.com/seu-repo/voxdial/internal/twiml"
)

const (
	openingGatherPrompt = "Please respond now."
	openingTimeoutLine  = "I didn't hear anything. Let me try again."

	respondingGatherPrompt = "Please respond."
	respondingTimeoutLine  = "Let me know if you have any other questions."
)

// WebhookHandler drives the two-state conversation loop the telephony
// provider executes. Every invocation is classified from the payload
// alone: a non-empty SpeechResult means the counterparty spoke
// (responding), anything else is the opening turn. The handler never
// fails a call; degraded paths fall back to on-the-fly synthesis URLs.
type WebhookHandler struct {
	contexts ports.ContextStore
	audio    ports.AudioCache
	synth    ports.SpeechSynthesizer
	policy   ports.DialoguePolicy
	baseURL  string
	log      *zap.Logger
}

func NewWebhookHandler(contexts ports.ContextStore, audio ports.AudioCache, synth ports.SpeechSynthesizer, policy ports.DialoguePolicy, baseURL string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		contexts: contexts,
		audio:    audio,
		synth:    synth,
		policy:   policy,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}
}

// HandleVoice is the provider's per-turn callback. It always answers
// 200 with a voice-response document.
func (h *WebhookHandler) HandleVoice(c *fiber.Ctx) error {
	callSid := c.FormValue("CallSid")
	utterance := strings.TrimSpace(c.FormValue("SpeechResult"))

	cc := h.getOrCreateContext(callSid)

	var doc *twiml.Response
	if utterance == "" {
		telemetry.WebhookTurnsTotal.WithLabelValues("opening").Inc()
		doc = h.openingTurn(c.Context(), callSid, cc)
	} else {
		telemetry.WebhookTurnsTotal.WithLabelValues("responding").Inc()
		doc = h.respondingTurn(c.Context(), callSid, utterance, cc)
	}
	telemetry.CallContexts.Set(float64(h.contexts.Len()))

	body, err := doc.Encode()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(body)
}

// getOrCreateContext returns the stored context for the SID, seeding a
// generic one when the provider calls back for a call we never placed
// (or before placement state landed). The generic script counts as the
// agent's opening turn so the transcript still alternates correctly.
func (h *WebhookHandler) getOrCreateContext(callSid string) *domain.CallContext {
	if cc, ok := h.contexts.Get(callSid); ok {
		return cc
	}

	cc := &domain.CallContext{
		Script:     call.DefaultScript,
		Transcript: []domain.Turn{{Role: domain.RoleAgent, Text: call.DefaultScript}},
	}
	if callSid == "" {
		return cc
	}

	h.log.Warn("No context for call, using default script", zap.String("call_sid", callSid))
	h.contexts.Create(callSid, cc)
	if stored, ok := h.contexts.Get(callSid); ok {
		return stored
	}
	return cc
}

func (h *WebhookHandler) openingTurn(ctx context.Context, callSid string, cc *domain.CallContext) *twiml.Response {
	h.log.Info("Playing opening script",
		zap.String("call_sid", callSid),
		zap.String("company", cc.CompanyName),
	)

	audioURL := h.openingAudioURL(ctx, callSid, cc)
	return twiml.ConversationTurn(audioURL, h.handlerURL(), openingGatherPrompt, openingTimeoutLine)
}

// openingAudioURL returns a cache-backed audio URL for the opening
// script, reusing an earlier synthesis when the cache still holds it.
// Any failure degrades to the text URL, which synthesizes at fetch time.
func (h *WebhookHandler) openingAudioURL(ctx context.Context, callSid string, cc *domain.CallContext) string {
	if cc.ScriptAudioID != "" {
		if _, err := h.audio.Get(ctx, cc.ScriptAudioID); err == nil {
			return h.audioIDURL(cc.ScriptAudioID)
		}
	}

	id, ok := h.synthesizeAndCache(ctx, cc.Script)
	if !ok {
		return h.audioTextURL(cc.Script)
	}
	if callSid != "" {
		h.contexts.SetScriptAudio(callSid, id)
	}
	return h.audioIDURL(id)
}

func (h *WebhookHandler) respondingTurn(ctx context.Context, callSid, utterance string, cc *domain.CallContext) *twiml.Response {
	if callSid != "" {
		h.contexts.AppendTurn(callSid, domain.Turn{Role: domain.RoleCounterparty, Text: utterance})
		if refreshed, ok := h.contexts.Get(callSid); ok {
			cc = refreshed
		}
	} else {
		cc.Transcript = append(cc.Transcript, domain.Turn{Role: domain.RoleCounterparty, Text: utterance})
	}

	reply, err := h.policy.NextTurn(ctx, utterance, cc)
	if err != nil || reply == "" {
		if err != nil {
			h.log.Error("Dialogue policy failed, using fallback line", zap.Error(err))
		}
		reply = call.FallbackLine
	}

	h.log.Info("Responding to counterparty",
		zap.String("call_sid", callSid),
		zap.String("utterance", utterance),
		zap.String("reply", reply),
	)

	audioURL := h.audioTextURL(reply)
	if id, ok := h.synthesizeAndCache(ctx, reply); ok {
		audioURL = h.audioIDURL(id)
	}

	if callSid != "" {
		h.contexts.AppendTurn(callSid, domain.Turn{Role: domain.RoleAgent, Text: reply})
	}

	return twiml.ConversationTurn(audioURL, h.handlerURL(), respondingGatherPrompt, respondingTimeoutLine)
}

// synthesizeAndCache converts text to audio and stores it under a fresh
// id. Returns ok=false when synthesis or caching failed; callers fall
// back to the text URL.
func (h *WebhookHandler) synthesizeAndCache(ctx context.Context, text string) (string, bool) {
	start := time.Now()
	data, err := h.synth.Synthesize(ctx, text)
	telemetry.SynthesisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.SynthesisTotal.WithLabelValues("error").Inc()
		h.log.Error("Speech synthesis failed", zap.Error(err))
		return "", false
	}
	telemetry.SynthesisTotal.WithLabelValues("success").Inc()

	id := uuid.NewString()
	if err := h.audio.Put(ctx, id, data); err != nil {
		h.log.Error("Audio cache write failed", zap.Error(err), zap.String("audio_id", id))
		return "", false
	}
	return id, true
}

// ServeAudio returns cached audio by id, or synthesizes the given text
// on the fly when only text is provided.
func (h *WebhookHandler) ServeAudio(c *fiber.Ctx) error {
	if id := c.Query("id"); id != "" {
		data, err := h.audio.Get(c.Context(), id)
		if err != nil {
			telemetry.AudioCacheRequestsTotal.WithLabelValues("miss").Inc()
			h.log.Warn("Audio cache miss", zap.String("audio_id", id))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "audio not found"})
		}
		telemetry.AudioCacheRequestsTotal.WithLabelValues("hit").Inc()
		c.Set(fiber.HeaderContentType, "audio/mpeg")
		return c.Send(data)
	}

	text := c.Query("text")
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id or text parameter is required"})
	}

	start := time.Now()
	data, err := h.synth.Synthesize(c.Context(), text)
	telemetry.SynthesisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.SynthesisTotal.WithLabelValues("error").Inc()
		return err
	}
	telemetry.SynthesisTotal.WithLabelValues("success").Inc()

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(data)
}

func (h *WebhookHandler) handlerURL() string {
	return h.baseURL + "/webhook/voice"
}

func (h *WebhookHandler) audioIDURL(id string) string {
	return fmt.Sprintf("%s/webhook/audio?id=%s", h.baseURL, id)
}

func (h *WebhookHandler) audioTextURL(text string) string {
	return h.baseURL + "/webhook/audio?text=" + url.QueryEscape(text)
}
